package main

import (
	"fmt"
	"os"
	"strconv"

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
	if len(os.Args) != 5 {
		return fmt.Errorf("usage: receiver <host> <port> <username> <room>")
	}
	host := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		return fmt.Errorf("invalid port %q", os.Args[2])
	}
	username := os.Args[3]
	room := os.Args[4]

	client, err := chatclient.Dial(host, port, consts.DefaultFrameLimit)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.LoginReceiver(username); err != nil {
		return err
	}
	if err := client.JoinRoom(room); err != nil {
		return err
	}

	return client.RunReceiver(os.Stdout, os.Stderr)
}
