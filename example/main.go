package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nickrobinson/ditto"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// a small table is plenty for a demo; real apps can stay on the defaults
	store, err := ditto.Open("demo-cache",
		ditto.WithTableSize(64),
		ditto.WithMaxSubscriptions(4),
		ditto.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// observe every mutation; the handler runs before Put/Delete return
	watcher, err := store.Subscribe(ditto.ChangeHandlerFunc(func(key string) {
		fmt.Printf("  changed: %s\n", key)
	}))
	if err != nil {
		slog.Error("failed to subscribe", "error", err)
		os.Exit(1)
	}

	fmt.Println("ditto demo")
	fmt.Println()

	fmt.Println("putting user:alice and user:bob")
	_ = store.Put("user:alice", []byte(`{"name":"Alice"}`))
	_ = store.Put("user:bob", []byte(`{"name":"Bob"}`))

	// two-call read: size query, then a sized read
	n, err := store.Get("user:alice", nil)
	if !errors.Is(err, ditto.ErrBufferTooSmall) {
		slog.Error("size query failed", "error", err)
		os.Exit(1)
	}
	buf := make([]byte, n)
	if _, err := store.Get("user:alice", buf); err != nil {
		slog.Error("read failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("read user:alice (%d bytes): %s\n", n, buf)

	fmt.Println("deleting user:bob")
	_ = store.Delete("user:bob")

	// after unsubscribing, further mutations are silent
	_ = store.Unsubscribe(watcher)
	fmt.Println("unsubscribed; this put prints no change line:")
	_ = store.Put("user:carol", []byte(`{"name":"Carol"}`))

	fmt.Printf("\nstore %q holds %d key(s): %v\n", store.Path(), store.Len(), store.Keys())
}
