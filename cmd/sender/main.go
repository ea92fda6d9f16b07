package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/codefionn/chatwire/internal/chatclient"
	"github.com/codefionn/chatwire/internal/consts"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 4 {
		return fmt.Errorf("usage: sender <host> <port> <username>")
	}
	host := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		return fmt.Errorf("invalid port %q", os.Args[2])
	}
	username := os.Args[3]

	client, err := chatclient.Dial(host, port, consts.DefaultFrameLimit)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.LoginSender(username); err != nil {
		return err
	}

	// only prompt when a human is typing
	var prompt io.Writer
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prompt = os.Stdout
	}

	return client.RunSender(os.Stdin, prompt, os.Stderr)
}
