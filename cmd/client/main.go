// Command client is a line-based terminal client for the chat server: one
// goroutine prints everything the server sends while the main loop forwards
// stdin lines. Sending /q requests graceful disconnect.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "chat server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("Unable to connect to %s: %v", *addr, err)
	}

	if err := run(conn, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Input error: %v", err)
	}
}

// run forwards lines from in to the server and prints everything the server
// sends to out. It returns once in is exhausted, the quit token was sent, or
// the connection drops, and never leaves the receive goroutine blocked.
func run(conn net.Conn, in io.Reader, out io.Writer) error {
	done := make(chan struct{})
	go receive(conn, out, done)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := conn.Write([]byte(line)); err != nil {
			log.Printf("Send failed: %v", err)
			break
		}
		if strings.TrimSpace(line) == "/q" {
			break
		}
	}

	// stdin hit EOF or the quit token went out: close our side so the
	// receive goroutine unblocks even if the server keeps the session open
	_ = conn.Close()
	<-done
	return scanner.Err()
}

func receive(conn net.Conn, out io.Writer, done chan<- struct{}) {
	defer close(done)

	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			fmt.Fprintln(out, string(buf[:n]))
		}
		if err != nil {
			fmt.Fprintln(out, "---연결이 종료되었습니다---")
			return
		}
	}
}
