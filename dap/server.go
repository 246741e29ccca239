package dap

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"

	"github.com/chzyer/readline"
	dap "github.com/google/go-dap"
	"golang.org/x/sync/errgroup"
)

// Server listens for a single DAP client over stdio and bridges it to
// a debuggee process via the file rendezvous protocol.
type Server struct{}

// New constructs a Server. A Server holds no debuggee handle itself:
// each session only learns the rendezvous file paths once a launch or
// attach request names them.
func New() *Server {
	return &Server{}
}

// Listen serves one DAP session over stdin/stdout until the client
// disconnects or ctx is cancelled.
func (s *Server) Listen(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cancelableStdin := readline.NewCancelableStdin(stdin)

	session := &Session{
		rw: bufio.NewReadWriter(
			bufio.NewReader(cancelableStdin),
			bufio.NewWriter(stdout),
		),
		done:              make(chan struct{}),
		sendQueue:         make(chan dap.Message),
		caps:              make(map[Capability]struct{}),
		sourcesHandles:    newHandlesMap(),
		variablesHandles:  newHandlesMap(),
		stackFrameHandles: newHandlesMap(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		session.sendFromQueue()
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		session.stopWatch()
		return cancelableStdin.Close()
	})

	log.SetOutput(io.Discard)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if err := session.handleRequest(ctx); err != nil {
				return err
			}
		}
	})

	session.sendWg.Wait()
	if err := g.Wait(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return session.err
}
