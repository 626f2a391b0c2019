// Package rpc exposes an Engine over gRPC. The service is described by an
// embedded .proto file and served with dynamic messages, so no generated
// code is involved.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/funski/internal/calc"
	"github.com/funvibe/funski/internal/engine"
	"github.com/funvibe/funski/internal/history"
	"github.com/funvibe/funski/internal/parser"
	"github.com/funvibe/funski/internal/prettyprinter"
)

type handlerFunc func(ctx context.Context, req fields) (fields, error)

// Server implements funski.v1.Engine on top of an engine.Engine.
type Server struct {
	engine  *engine.Engine
	logger  *log.Logger
	limiter *rate.Limiter
}

type Option func(*Server)

// WithRateLimit admits at most perSecond requests per second across all
// clients, with bursts of the same size. Zero or less disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewServer returns a server for eng. A nil logger discards the request log.
func NewServer(eng *engine.Engine, logger *log.Logger, opts ...Option) *Server {
	s := &Server{engine: eng, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOptions returns the interceptors of s, to be passed to grpc.NewServer.
func (s *Server) ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{grpc.ChainUnaryInterceptor(s.logUnary, s.limitUnary)}
}

// Register adds the service to gs.
func (s *Server) Register(gs *grpc.Server) error {
	sd, err := serviceDescriptor()
	if err != nil {
		return err
	}

	handlers := map[string]handlerFunc{
		"Run":      s.run,
		"Reduce":   s.reduce,
		"Unlambda": s.unlambda,
	}

	svc := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*any)(nil),
		Metadata:    protoFile,
	}
	for _, md := range sd.GetMethods() {
		h, ok := handlers[md.GetName()]
		if !ok {
			return fmt.Errorf("no handler for %s", md.GetFullyQualifiedName())
		}
		svc.Methods = append(svc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler:    unaryHandler(md, h),
		})
	}
	gs.RegisterService(svc, s)
	return nil
}

// unaryHandler adapts h to grpc's method handler, decoding into and encoding
// from dynamic messages of md's types.
func unaryHandler(md *desc.MethodDescriptor, h handlerFunc) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := methodPath(md.GetName())
	call := func(ctx context.Context, req any) (any, error) {
		out, err := h(ctx, fromMessage(req.(*dynamic.Message)))
		if err != nil {
			return nil, err
		}
		resp := dynamic.NewMessage(md.GetOutputType())
		if err := toMessage(out, resp); err != nil {
			return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
		}
		return resp, nil
	}

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := dynamic.NewMessage(md.GetInputType())
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, call)
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) run(ctx context.Context, req fields) (fields, error) {
	out, err := s.engine.RunLine(ctx, req.str("command"))
	if err != nil {
		return nil, toStatus(err)
	}
	if found, ok := out.(*engine.Found); ok && !found.OK {
		return nil, status.Errorf(codes.NotFound, "%s is not defined", found.ID)
	}

	lines := engine.Lines(s.engine.Style(), out, nil)
	return fields{"kind": out.Kind(), "lines": stringsToList(lines)}, nil
}

func (s *Server) reduce(ctx context.Context, req fields) (fields, error) {
	e, err := parser.ParseExpr(req.str("expr"))
	if err != nil {
		return nil, toStatus(err)
	}
	r, err := s.engine.Reduce(ctx, e, req.int("limit"))
	if err != nil {
		return nil, toStatus(err)
	}

	style := s.engine.Style()
	steps := make([]any, 0, len(r.Steps))
	for _, step := range r.Steps {
		formed := prettyprinter.Render(style, step.Expr)
		start, end, _ := formed.Range(step.Reduced)
		path := make([]any, 0, len(step.Reduced.Routes)+1)
		for _, i := range step.Reduced.Indices() {
			path = append(path, i)
		}
		steps = append(steps, fields{
			"step":  step.Number,
			"expr":  formed.Text,
			"path":  path,
			"start": start,
			"end":   end,
		})
	}
	return fields{
		"steps":  steps,
		"result": prettyprinter.Format(style, r.Result),
		"normal": r.Normal,
	}, nil
}

func (s *Server) unlambda(ctx context.Context, req fields) (fields, error) {
	e, err := parser.ParseExpr(req.str("expr"))
	if err != nil {
		return nil, toStatus(err)
	}
	result, err := s.engine.Unlambda(req.int("level"), e, req.bool("shallow"))
	if err != nil {
		return nil, toStatus(err)
	}
	return fields{"expr": prettyprinter.Format(s.engine.Style(), result)}, nil
}

func stringsToList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// toStatus maps engine errors to gRPC status errors.
func toStatus(err error) error {
	var (
		syntaxErr  *parser.Error
		arityErr   *calc.ArityMismatchError
		undefErr   *calc.UndefinedFunctionError
		notFuncErr *calc.NotAFunctionError
	)
	switch {
	case errors.As(err, &syntaxErr),
		errors.Is(err, engine.ErrInvalidLevel),
		errors.Is(err, engine.ErrNegativeCount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &undefErr):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &arityErr), errors.As(err, &notFuncErr):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, history.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// =============================================================================
// Interceptors
// =============================================================================

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	id := uuid.NewString()
	start := time.Now()
	resp, err := handler(ctx, req)
	if s.logger != nil {
		s.logger.Printf("rpc %s id=%s code=%s duration=%s", info.FullMethod, id, status.Code(err), time.Since(start))
	}
	return resp, err
}

func (s *Server) limitUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for %s", info.FullMethod)
	}
	return handler(ctx, req)
}
