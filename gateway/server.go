package gateway

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"

	"github.com/theapemachine/qgate"
	"github.com/theapemachine/qgate/quantumpb"
)

/*
Server answers RunQuil by simulating the program in-process and streaming
one readout bit per shot. Results are cached by request, so a repeated
request returns the same samples until the entry expires.
*/
type Server struct {
	quantumpb.UnimplementedQuantumServiceServer

	log       *zap.Logger
	executor  qgate.Executor
	cache     Cache
	limiter   *RateLimiter
	chunkSize int
	maxShots  int
	cacheTTL  time.Duration
	metrics   *serverMetrics
	cfg       qgate.GatewayConfig
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithExecutor replaces the default local simulator.
func WithExecutor(e qgate.Executor) Option {
	return func(s *Server) { s.executor = e }
}

func WithCache(c Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithRegisterer exposes the gateway counters on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Server) { s.metrics = newServerMetrics(reg) }
}

func NewServer(cfg qgate.GatewayConfig, opts ...Option) *Server {
	s := &Server{
		log:       zap.NewNop(),
		chunkSize: cfg.ChunkSize,
		maxShots:  cfg.MaxShots,
		cacheTTL:  cfg.CacheTTL,
		limiter:   NewRateLimiter(cfg.RateBurst, cfg.RateLimit),
		cfg:       cfg,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize <= 0 {
		s.chunkSize = 256
	}

	if s.maxShots <= 0 {
		s.maxShots = qgate.DefaultMaxShots
	}

	if s.executor == nil {
		s.executor = qgate.NewLocalExecutor(qgate.WithMaxShots(s.maxShots))
	}

	if s.metrics == nil {
		s.metrics = newServerMetrics(nil)
	}

	return s
}

func (s *Server) RunQuil(req *quantumpb.RunQuilRequest, stream quantumpb.QuantumService_RunQuilServer) (err error) {
	ctx := stream.Context()
	start := time.Now()

	defer func() {
		code := status.Code(err)
		s.metrics.requests.WithLabelValues(code.String()).Inc()

		if err != nil {
			s.log.Warn("run quil failed", zap.Stringer("code", code), zap.Error(err))
			return
		}
		s.log.Debug("run quil", zap.Int32("shots", req.GetShots()), zap.Duration("elapsed", time.Since(start)))
	}()

	if s.limiter.Limit() {
		return status.Error(codes.ResourceExhausted, "rate limit exceeded")
	}

	if req.GetShots() <= 0 {
		return status.Errorf(codes.InvalidArgument, "shots must be positive, got %d", req.GetShots())
	}

	if int(req.GetShots()) > s.maxShots {
		return status.Errorf(codes.InvalidArgument, "%d shots exceeds the gateway limit %d", req.GetShots(), s.maxShots)
	}

	key := cacheKey(req)
	if ro, ok := s.lookup(ctx, key); ok {
		return s.send(stream, ro)
	}

	ro, err := s.simulate(ctx, req)
	if err != nil {
		return toStatus(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, ro, s.cacheTTL); err != nil {
			s.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}

	return s.send(stream, ro)
}

func (s *Server) lookup(ctx context.Context, key string) ([]int32, bool) {
	if s.cache == nil {
		return nil, false
	}

	ro, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		s.metrics.cache.WithLabelValues("error").Inc()
		return nil, false
	case !ok:
		s.metrics.cache.WithLabelValues("miss").Inc()
		return nil, false
	default:
		s.metrics.cache.WithLabelValues("hit").Inc()
		return ro, true
	}
}

func (s *Server) simulate(ctx context.Context, req *quantumpb.RunQuilRequest) ([]int32, error) {
	program, err := qgate.ParseProgram(req.GetProgram())
	if err != nil {
		return nil, err
	}

	// One int32 per shot only carries a single readout bit.
	if program.RegisterWidth() != 1 {
		return nil, status.Errorf(codes.InvalidArgument, "readout register %s is %d bits wide, only 1 is supported",
			program.Register(), program.RegisterWidth())
	}

	bindings := make(qgate.Bindings, len(req.GetParams()))
	for name, value := range req.GetParams() {
		bindings[name] = value
	}

	outcomes, err := s.executor.Run(ctx, qgate.Job{
		Program:  program,
		Bindings: bindings,
		Shots:    int(req.GetShots()),
	})
	if err != nil {
		return nil, err
	}

	ro := make([]int32, len(outcomes))
	for i, o := range outcomes {
		switch o {
		case "0":
		case "1":
			ro[i] = 1
		default:
			return nil, errors.Errorf("outcome %q is not a single bit", o)
		}
	}

	return ro, nil
}

func (s *Server) send(stream quantumpb.QuantumService_RunQuilServer, ro []int32) error {
	for offset := 0; offset < len(ro); offset += s.chunkSize {
		end := min(offset+s.chunkSize, len(ro))

		if err := stream.Send(&quantumpb.QuilResult{Ro: ro[offset:end]}); err != nil {
			return err
		}
		s.metrics.outcomes.Add(float64(end - offset))
	}

	return nil
}

/*
toStatus maps domain errors onto gRPC codes. Errors that already carry a
status pass through untouched.
*/
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, qgate.ErrParse),
		errors.Is(err, qgate.ErrConfig),
		errors.Is(err, qgate.ErrArityMismatch),
		errors.Is(err, qgate.ErrDuplicateParameter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, qgate.ErrCancelled),
		errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// GRPCServer builds a grpc.Server with the service registered, using TLS when
// both certificate files are configured.
func (s *Server) GRPCServer(opts ...grpc.ServerOption) (*grpc.Server, error) {
	opts = append([]grpc.ServerOption{quantumpb.ServerOption()}, opts...)

	if s.cfg.TLSCertFile != "" || s.cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "load tls key pair")
		}

		opts = append(opts, grpc.Creds(credentials.NewTLS(&tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS13,
		})))
	}

	srv := grpc.NewServer(opts...)
	quantumpb.RegisterQuantumServiceServer(srv, s)

	return srv, nil
}

/*
Serve listens on the configured address until ctx is done, then stops
accepting new streams and waits for running ones.
*/
func (s *Server) Serve(ctx context.Context) error {
	srv, err := s.GRPCServer()
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.cfg.ListenAddr)
	}

	return s.serve(ctx, srv, lis)
}

func (s *Server) serve(ctx context.Context, srv *grpc.Server, lis net.Listener) error {
	stop := context.AfterFunc(ctx, srv.GracefulStop)
	defer stop()

	s.log.Info("gateway listening", zap.String("addr", lis.Addr().String()))

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return errors.Wrap(err, "serve")
	}

	return nil
}
