// Package server is the UDP transport of the simulated RPC server. It
// binds one datagram socket per tenant port, pumps arrivals into the
// dispatch driver's channel and echoes the 8-byte wire timestamp back on
// completion. Transport errors mid-run are logged and survived; bind and
// address errors are fatal at startup.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/ankit-iitb/sandstorm-simulator/core/dispatch"
	"github.com/ankit-iitb/sandstorm-simulator/core/logger"
	"github.com/ankit-iitb/sandstorm-simulator/core/workload"
)

// Server owns the tenant sockets and their reader goroutines.
type Server struct {
	cfg      Config
	log      logger.Logger
	conns    []*net.UDPConn
	gens     []*workload.Generator
	arrivals chan dispatch.Arrival

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// replyCtx is the per-request reply context threaded through the driver.
type replyCtx struct {
	conn *net.UDPConn
	addr *net.UDPAddr
}

// New binds the tenant sockets and prepares readers. Each tenant gets
// its own service-demand generator stream, so costs are reproducible
// per tenant under a fixed seed.
func New(cfg Config, wl workload.Config, depth int, log logger.Logger) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	if depth < 1 {
		depth = 1
	}

	ip := net.ParseIP(cfg.ListenIP)
	if ip == nil {
		return nil, fmt.Errorf("server: cannot parse listen_ip %q", cfg.ListenIP)
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		conns:    make([]*net.UDPConn, 0, cfg.Tenants),
		gens:     make([]*workload.Generator, 0, cfg.Tenants),
		arrivals: make(chan dispatch.Arrival, depth),
	}
	for t := 0; t < cfg.Tenants; t++ {
		port := 0
		if cfg.BasePort > 0 {
			port = cfg.BasePort + t
		}
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: port})
		if err != nil {
			s.closeConns()
			return nil, fmt.Errorf("server: bind tenant %d: %w", t, err)
		}
		gen, err := workload.New(wl, uint64(t))
		if err != nil {
			conn.Close()
			s.closeConns()
			return nil, err
		}
		s.conns = append(s.conns, conn)
		s.gens = append(s.gens, gen)
	}
	return s, nil
}

// Arrivals is the channel the dispatch driver consumes.
func (s *Server) Arrivals() <-chan dispatch.Arrival { return s.arrivals }

// Addrs returns the bound address of each tenant socket, in tenant
// order.
func (s *Server) Addrs() []*net.UDPAddr {
	addrs := make([]*net.UDPAddr, len(s.conns))
	for i, c := range s.conns {
		addrs[i] = c.LocalAddr().(*net.UDPAddr)
	}
	return addrs
}

// Start launches one reader goroutine per tenant socket.
func (s *Server) Start(ctx context.Context) {
	for t, conn := range s.conns {
		s.wg.Add(1)
		go s.readLoop(ctx, uint16(t), conn, s.gens[t])
	}
	s.log.Infof("server up: %d tenant sockets from %s", len(s.conns), s.conns[0].LocalAddr())
}

func (s *Server) readLoop(ctx context.Context, tenant uint16, conn *net.UDPConn, gen *workload.Generator) {
	defer s.wg.Done()
	buf := make([]byte, EchoSize)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warnf("tenant %d read: %v", tenant, err)
			continue
		}
		if n < EchoSize {
			s.log.Warnf("tenant %d: short datagram of %d bytes from %s", tenant, n, addr)
			continue
		}
		a := dispatch.Arrival{
			Tenant:  tenant,
			Echo:    Echo(buf),
			Cost:    gen.NextCost(),
			ReplyTo: replyCtx{conn: conn, addr: addr},
		}
		select {
		case s.arrivals <- a:
		case <-ctx.Done():
			return
		}
	}
}

// Respond is the driver's completion callback: it echoes the request's
// timestamp back to the sender on the tenant's own socket.
func (s *Server) Respond(c dispatch.Completion) {
	rc, ok := c.ReplyTo.(replyCtx)
	if !ok {
		s.log.Errorf("completion for tenant %d has no reply context", c.Tenant)
		return
	}
	var buf [EchoSize]byte
	PutEcho(buf[:], c.Echo)
	if _, err := rc.conn.WriteToUDP(buf[:], rc.addr); err != nil {
		s.log.Warnf("respond to %s: %v", rc.addr, err)
	}
}

// Close shuts the sockets, waits for the readers and closes the arrival
// channel so a draining driver can finish.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.closeConns()
		s.wg.Wait()
		close(s.arrivals)
	})
	return nil
}

func (s *Server) closeConns() {
	for _, c := range s.conns {
		if c != nil {
			c.Close()
		}
	}
}
