package main

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCloser struct {
	closed int
	err    error
}

func (c *countingCloser) Close() error {
	c.closed++
	return c.err
}

func TestServeClosesStoreWhenListenFails(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	log := slog.New(slog.DiscardHandler)
	closer := &countingCloser{}
	closeStore := closeOnce(closer, log)
	srv := &http.Server{Addr: busy.Addr().String(), ReadHeaderTimeout: time.Second}

	serve(srv, closeStore, log)
	assert.Equal(t, 1, closer.closed)

	shutdown(srv, time.Second, closeStore, log)
	assert.Equal(t, 1, closer.closed)
}

func TestShutdownClosesStore(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	closer := &countingCloser{err: errors.New("already closed")}
	closeStore := closeOnce(closer, log)
	srv := &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		serve(srv, closeStore, log)
	}()
	require.Eventually(t, func() bool {
		shutdown(srv, time.Second, closeStore, log)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, closer.closed)
}
