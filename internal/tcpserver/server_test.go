package tcpserver_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Remmy-coder/load-balancer/internal/tcpserver"
)

func TestTCPServer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TCP Server Suite")
}

type connHandlerFunc func(ctx context.Context, conn net.Conn)

func (f connHandlerFunc) HandleConn(ctx context.Context, conn net.Conn) {
	f(ctx, conn)
}

var _ = Describe("TCP Server", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	})

	noopHandler := connHandlerFunc(func(ctx context.Context, conn net.Conn) {
		conn.Close()
	})

	Context("server creation", func() {
		It("creates server with valid address", func() {
			srv, err := tcpserver.New("localhost:9999", noopHandler, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(srv).NotTo(BeNil())
		})

		It("creates server with IP address", func() {
			srv, err := tcpserver.New("127.0.0.1:9999", noopHandler, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(srv).NotTo(BeNil())
		})

		It("handles port-only address", func() {
			srv, err := tcpserver.New(":9999", noopHandler, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(srv).NotTo(BeNil())
		})

		It("rejects invalid address", func() {
			srv, err := tcpserver.New("invalid:host:port", noopHandler, log)
			Expect(err).To(HaveOccurred())
			Expect(srv).To(BeNil())
		})
	})

	Context("server lifecycle", func() {
		var (
			srv   *tcpserver.Server
			errCh chan error
		)

		startServer := func(h tcpserver.ConnHandler) {
			var err error
			srv, err = tcpserver.New("127.0.0.1:0", h, log)
			Expect(err).NotTo(HaveOccurred())

			errCh = make(chan error, 1)
			go func() {
				errCh <- srv.Start(context.Background())
			}()
			Eventually(srv.Addr).ShouldNot(BeNil())
		}

		AfterEach(func() {
			if srv != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}
		})

		It("accepts connections and hands them to the handler", func() {
			startServer(connHandlerFunc(func(ctx context.Context, conn net.Conn) {
				defer conn.Close()
				conn.Write([]byte("hi"))
			}))

			conn, err := net.Dial("tcp", srv.Addr().String())
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()

			reply, err := io.ReadAll(conn)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(reply)).To(Equal("hi"))
		})

		It("serves connections concurrently", func() {
			gate := make(chan struct{})
			startServer(connHandlerFunc(func(ctx context.Context, conn net.Conn) {
				defer conn.Close()
				<-gate
				conn.Write([]byte("ok"))
			}))

			conn1, err := net.Dial("tcp", srv.Addr().String())
			Expect(err).NotTo(HaveOccurred())
			defer conn1.Close()

			conn2, err := net.Dial("tcp", srv.Addr().String())
			Expect(err).NotTo(HaveOccurred())
			defer conn2.Close()

			// Both connections are in flight while the gate is shut, so
			// neither blocked the accept loop.
			close(gate)

			for _, conn := range []net.Conn{conn1, conn2} {
				reply, err := io.ReadAll(conn)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(reply)).To(Equal("ok"))
			}
		})

		It("stops accepting after shutdown", func() {
			startServer(noopHandler)

			addr := srv.Addr().String()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			Expect(srv.Shutdown(ctx)).To(Succeed())
			Eventually(errCh).Should(Receive(BeNil()))

			_, err := net.Dial("tcp", addr)
			Expect(err).To(HaveOccurred())
		})

		It("waits for in-flight connections on shutdown", func() {
			started := make(chan struct{})
			gate := make(chan struct{})
			startServer(connHandlerFunc(func(ctx context.Context, conn net.Conn) {
				defer conn.Close()
				close(started)
				<-gate
			}))

			conn, err := net.Dial("tcp", srv.Addr().String())
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()

			Eventually(started).Should(BeClosed())

			shutdownDone := make(chan error, 1)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				shutdownDone <- srv.Shutdown(ctx)
			}()

			Consistently(shutdownDone, "100ms").ShouldNot(Receive())

			close(gate)
			Eventually(shutdownDone).Should(Receive(BeNil()))
		})

		It("tolerates shutdown before start", func() {
			var err error
			srv, err = tcpserver.New("127.0.0.1:0", noopHandler, log)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()
			Expect(srv.Shutdown(ctx)).To(Succeed())
		})

		It("returns an error when the address is taken", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			defer ln.Close()

			var taken *tcpserver.Server
			taken, err = tcpserver.New(ln.Addr().String(), noopHandler, log)
			Expect(err).NotTo(HaveOccurred())

			Expect(taken.Start(context.Background())).To(HaveOccurred())
		})
	})
})
