package config

import (
	"fmt"
	"net"
	"strconv"
)

const (
	maxPort      = 65535
	minLineBytes = 1024
)

// listenAddr binds every interface on port.
func listenAddr(port int) string {
	return ":" + strconv.Itoa(port)
}

func portOf(addr string) (int, error) {
	_, raw, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", raw)
	}
	if port <= 0 || port > maxPort {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}

// ReceiverPort reports the configured receiver port.
func (r Runtime) ReceiverPort() int {
	port, _ := portOf(r.Receiver.ListenAddr)
	return port
}
