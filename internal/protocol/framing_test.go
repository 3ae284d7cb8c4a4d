package protocol

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	payloads := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{}`,
		"",
	}

	var buf bytes.Buffer
	for _, p := range payloads {
		if err := WriteMessage(&buf, []byte(p)); err != nil {
			t.Fatalf("WriteMessage(%q): %v", p, err)
		}
	}

	reader := bufio.NewReader(&buf)
	for _, want := range payloads {
		got, err := ReadMessage(reader)
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		if string(got) != want {
			t.Fatalf("ReadMessage=%q want=%q", got, want)
		}
	}
	if _, err := ReadMessage(reader); err != io.EOF {
		t.Fatalf("expected EOF after last message, got %v", err)
	}
}

func TestReadMessageSkipsExtraHeaders(t *testing.T) {
	raw := "Content-Type: application/json\r\ncontent-length: 2\r\n\r\n{}"
	got, err := ReadMessage(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if string(got) != "{}" {
		t.Fatalf("ReadMessage=%q want={}", got)
	}
}

func TestReadMessageMissingContentLength(t *testing.T) {
	raw := "Content-Type: application/json\r\n\r\n{}"
	if _, err := ReadMessage(bufio.NewReader(strings.NewReader(raw))); err == nil {
		t.Fatal("expected error for missing Content-Length")
	}
}

func TestReadMessageTruncatedBody(t *testing.T) {
	raw := "Content-Length: 10\r\n\r\n{}"
	if _, err := ReadMessage(bufio.NewReader(strings.NewReader(raw))); err == nil {
		t.Fatal("expected error for truncated body")
	}
}
