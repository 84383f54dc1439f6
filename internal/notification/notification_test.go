package notification

import (
    "bytes"
    "context"
    "encoding/json"
    "log/slog"
    "testing"
)

func TestLoggerNotifierWritesStructuredRecord(t *testing.T) {
    var buf bytes.Buffer
    n := NewLoggerNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

    if err := n.Send(context.Background(), Message{Kind: KindEventVerified, Destination: "user:2", Body: "event 7 verified"}); err != nil {
        t.Fatalf("send: %v", err)
    }

    var rec map[string]any
    if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
        t.Fatalf("decode log line: %v", err)
    }
    if rec["kind"] != KindEventVerified || rec["destination"] != "user:2" {
        t.Fatalf("unexpected record %v", rec)
    }
}

func TestNilLoggerNotifierIsNoop(t *testing.T) {
    var n *LoggerNotifier
    if err := n.Send(context.Background(), Message{Kind: KindEventRecorded}); err != nil {
        t.Fatalf("expected nil error, got %v", err)
    }
}
