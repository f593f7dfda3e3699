package qgate

import (
	"context"
	"io"
	"math"
	"net"
	"strconv"
	"strings"

	"github.com/theapemachine/errnie"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/theapemachine/qgate/quantumpb"
)

/*
RemoteExecutor submits jobs to a gateway over the QuantumService.RunQuil
server stream and concatenates every streamed chunk in arrival order.

The connection is unauthenticated and unencrypted. It applies no timeout of
its own; callers bound a run with a context deadline.
*/
type RemoteExecutor struct {
	endpoint string
	conn     *grpc.ClientConn
	client   quantumpb.QuantumServiceClient
}

// NewRemoteExecutor validates the endpoint and prepares a lazy client
// connection. Extra dial options are appended after the insecure credentials.
func NewRemoteExecutor(endpoint string, opts ...grpc.DialOption) (*RemoteExecutor, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, dialOpts...)
	if err != nil {
		return nil, newError(ErrConfig, "endpoint %q: %v", endpoint, err)
	}

	return &RemoteExecutor{
		endpoint: endpoint,
		conn:     conn,
		client:   quantumpb.NewQuantumServiceClient(conn),
	}, nil
}

// Endpoint is the gateway address this executor talks to.
func (r *RemoteExecutor) Endpoint() string { return r.endpoint }

func (r *RemoteExecutor) Run(ctx context.Context, job Job) ([]Outcome, error) {
	if job.Shots <= 0 {
		return nil, newError(ErrConfig, "shots must be positive, got %d", job.Shots)
	}

	// The wire field is int32; a wrapped count would come back as a short run.
	if int64(job.Shots) > math.MaxInt32 {
		return nil, newError(ErrConfig, "%d shots exceeds the protocol limit %d", job.Shots, math.MaxInt32)
	}

	req := &quantumpb.RunQuilRequest{
		Program: job.Program.String(),
		Shots:   int32(job.Shots),
		Params:  make(map[string]float64, len(job.Bindings)),
	}
	for name, value := range job.Bindings {
		req.Params[name] = value
	}

	stream, err := r.client.RunQuil(ctx, req)
	if err != nil {
		return nil, transportError(ctx, r.endpoint, err)
	}

	var (
		outcomes []Outcome
		chunks   int
	)

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, transportError(ctx, r.endpoint, err)
		}

		chunks++
		for _, bit := range chunk.GetRo() {
			if bit != 0 && bit != 1 {
				return nil, newError(ErrProtocol, "chunk %d carries readout value %d", chunks, bit)
			}
			outcomes = append(outcomes, Outcome(strconv.Itoa(int(bit))))
		}
	}

	if len(outcomes) == 0 {
		return nil, newError(ErrProtocol, "stream from %s closed after %d chunks with no outcomes", r.endpoint, chunks)
	}

	errnie.Info("remote run - endpoint %s, chunks %d, outcomes %d", r.endpoint, chunks, len(outcomes))

	return outcomes, nil
}

// Close releases the underlying connection.
func (r *RemoteExecutor) Close() error {
	return r.conn.Close()
}

func transportError(ctx context.Context, endpoint string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return cancelled(ctxErr)
	}

	switch status.Code(err) {
	case codes.Canceled, codes.DeadlineExceeded:
		return cancelled(err)
	}

	if isContextError(err) {
		return cancelled(err)
	}

	return newError(ErrTransport, "%s: %v", endpoint, err)
}

/*
validateEndpoint accepts host:port addresses and gRPC target URIs such as
dns:///host:port, unix:/path or passthrough:///name.
*/
func validateEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) != endpoint || endpoint == "" {
		return newError(ErrConfig, "malformed endpoint %q", endpoint)
	}

	if strings.Contains(endpoint, "://") || strings.HasPrefix(endpoint, "unix:") {
		return nil
	}

	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return newError(ErrConfig, "endpoint %q: %v", endpoint, err)
	}

	if strings.ContainsAny(host, " \t") {
		return newError(ErrConfig, "endpoint %q has a malformed host", endpoint)
	}

	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return newError(ErrConfig, "endpoint %q has a malformed port", endpoint)
	}

	return nil
}
