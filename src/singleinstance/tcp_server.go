package singleinstance

import (
	"bufio"
	"net"
	"sync"
	"time"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
)

// Lock is a held single-instance claim.
type Lock struct {
	lis  net.Listener
	port int

	once sync.Once
	done chan struct{}
}

func listen(port int) (*Lock, error) {
	lis, err := net.Listen("tcp", residentAddr(port))
	if err != nil {
		return nil, err
	}
	l := &Lock{lis: lis, port: port, done: make(chan struct{})}
	go l.acceptLoop()
	return l, nil
}

// Port returns the bound TCP port.
func (l *Lock) Port() int { return l.port }

// Close releases the lock. Safe to call more than once.
func (l *Lock) Close() error {
	var err error
	l.once.Do(func() {
		err = l.lis.Close()
		<-l.done
	})
	return err
}

func (l *Lock) acceptLoop() {
	defer close(l.done)
	for {
		c, err := l.lis.Accept()
		if err != nil {
			return
		}
		go l.answer(c)
	}
}

func (l *Lock) answer(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	line, _ := bufio.NewReader(c).ReadString('\n')
	if line != pingRequest {
		return
	}
	bw := bufio.NewWriter(c)
	_, _ = bw.WriteString(pongResponse)
	_ = bw.Flush()
}
