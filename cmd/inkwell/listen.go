package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
)

// maxPortAttempts bounds how many successive ports listen tries.
const maxPortAttempts = 10

// listen binds addr. With fallback set, a busy port is retried on the next
// ports up to maxPortAttempts times.
func listen(addr string, fallback bool, log logrus.FieldLogger) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err == nil || !fallback || !errors.Is(err, syscall.EADDRINUSE) {
		return ln, err
	}

	host, portStr, splitErr := net.SplitHostPort(addr)
	if splitErr != nil {
		return nil, err
	}
	port, convErr := strconv.Atoi(portStr)
	if convErr != nil || port == 0 {
		return nil, err
	}

	for i := 1; i < maxPortAttempts; i++ {
		next := net.JoinHostPort(host, strconv.Itoa(port+i))
		log.WithFields(logrus.Fields{"busy": addr, "trying": next}).Warn("port in use, trying the next one")

		ln, err = net.Listen("tcp", next)
		if err == nil {
			return ln, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no free port in %d attempts from %s: %w", maxPortAttempts, addr, err)
}
