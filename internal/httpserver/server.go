// Package httpserver implements the raw-TCP request handling and
// accept-loop dispatch that exercises servelab's worker pools. It is
// deliberately not built on net/http: the request format is a single
// HTTP/1.1 line matched against a fixed prefix set, mirroring the
// minimal line-based parsing the reference implementation uses.
package httpserver

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"code.hybscloud.com/servelab/internal/config"
	"code.hybscloud.com/servelab/internal/obs"
	"code.hybscloud.com/servelab/internal/workload"
)

var (
	startedAt = time.Now()
	connCount uint64
)

// Submitter is the coupling point between the accept loop and a worker
// pool: [pool.LockFreePool] and [pool.BlockingPool] both satisfy it.
type Submitter interface {
	Submit(job func()) error
}

// HandleConn reads a single HTTP/1.1 request line from c, dispatches it
// to the matching workload route, writes the response, and closes the
// connection. Any request line not matching a known prefix gets the
// static 404 page.
func HandleConn(c net.Conn) {
	defer c.Close()
	atomic.AddUint64(&connCount, 1)

	r := bufio.NewReader(c)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return
	}
	line = strings.TrimRight(line, "\r\n")

	resp := route(line)
	writeResponse(c, resp)
}

func route(requestLine string) workload.Response {
	target := requestTarget(requestLine)
	switch {
	case target == "/":
		return workload.Index()
	case strings.HasPrefix(target, "/cpu"):
		return workload.CPU(workload.ParseSize(target))
	case strings.HasPrefix(target, "/sleep"):
		return workload.Sleep(0)
	case strings.HasPrefix(target, "/mixed"):
		return workload.Mixed(workload.ParseSize(target), 0)
	case target == "/status":
		return statusResponse()
	default:
		return workload.NotFound()
	}
}

// requestTarget extracts the path from a request line of the form
// "GET /cpu/1000 HTTP/1.1". Returns "" if the line cannot be parsed.
func requestTarget(requestLine string) string {
	fields := strings.Fields(requestLine)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func writeResponse(c net.Conn, resp workload.Response) {
	body := resp.Body
	header := resp.Status + "\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n"
	_, _ = c.Write([]byte(header + body))
}

func statusResponse() workload.Response {
	out := map[string]any{
		"pid":         os.Getpid(),
		"uptime_ms":   time.Since(startedAt).Milliseconds(),
		"connections": atomic.LoadUint64(&connCount),
	}
	b, _ := json.Marshal(out)
	return workload.Response{Status: "HTTP/1.1 200 OK", Body: string(b)}
}

// Serve runs the accept loop for ln according to strategy, dispatching
// each accepted connection to sub when strategy requires a pool. sub is
// ignored for [config.SingleThreaded] and [config.ThreadPerConnection].
// Serve returns when ln.Accept fails, which happens once ln is closed
// by the caller as part of shutdown.
func Serve(ln net.Listener, strategy config.Strategy, sub Submitter) error {
	logger := obs.Logger()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		switch strategy {
		case config.SingleThreaded:
			HandleConn(conn)
		case config.ThreadPerConnection:
			go HandleConn(conn)
		case config.LockFree, config.Blocking:
			c := conn
			if err := sub.Submit(func() { HandleConn(c) }); err != nil {
				logger.Warn("queue full, connection rejected", "remote", c.RemoteAddr())
				_ = c.Close()
			}
		default:
			go HandleConn(conn)
		}
	}
}
