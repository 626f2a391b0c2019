package rpc

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a funski.v1.Engine service.
type Client struct {
	conn    grpc.ClientConnInterface
	closer  func() error
	service *desc.ServiceDescriptor
}

// RunResult is the reply to Run.
type RunResult struct {
	Kind  string
	Lines []string
}

// ReduceStep is one step of a Reduce reply. Start and End delimit the
// reduced subterm in Expr.
type ReduceStep struct {
	Step       int
	Expr       string
	Path       []int
	Start, End int
}

// ReduceResult is the reply to Reduce.
type ReduceResult struct {
	Steps  []ReduceStep
	Result string
	Normal bool
}

// Dial connects to target without transport security.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	c, err := NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.closer = conn.Close
	return c, nil
}

// NewClient wraps an existing connection. Close does not close conn.
func NewClient(conn grpc.ClientConnInterface) (*Client, error) {
	sd, err := serviceDescriptor()
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, service: sd}, nil
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) invoke(ctx context.Context, method string, req fields) (fields, error) {
	md := c.service.FindMethodByName(method)
	if md == nil {
		return nil, fmt.Errorf("method %s not found in %s", method, ServiceName)
	}
	in := dynamic.NewMessage(md.GetInputType())
	if err := toMessage(req, in); err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	out := dynamic.NewMessage(md.GetOutputType())
	if err := c.conn.Invoke(ctx, methodPath(method), in, out); err != nil {
		return nil, err
	}
	return fromMessage(out), nil
}

// Run sends one command line.
func (c *Client) Run(ctx context.Context, line string) (*RunResult, error) {
	resp, err := c.invoke(ctx, "Run", fields{"command": line})
	if err != nil {
		return nil, err
	}
	res := &RunResult{Kind: resp.str("kind")}
	for _, l := range resp.list("lines") {
		s, _ := l.(string)
		res.Lines = append(res.Lines, s)
	}
	return res, nil
}

// Reduce evaluates src for at most limit steps. Zero means the server's
// limit.
func (c *Client) Reduce(ctx context.Context, src string, limit int) (*ReduceResult, error) {
	resp, err := c.invoke(ctx, "Reduce", fields{"expr": src, "limit": limit})
	if err != nil {
		return nil, err
	}
	res := &ReduceResult{Result: resp.str("result"), Normal: resp.bool("normal")}
	for _, item := range resp.list("steps") {
		f, _ := item.(fields)
		step := ReduceStep{
			Step:  f.int("step"),
			Expr:  f.str("expr"),
			Start: f.int("start"),
			End:   f.int("end"),
		}
		for _, i := range f.list("path") {
			n, _ := i.(int)
			step.Path = append(step.Path, n)
		}
		res.Steps = append(res.Steps, step)
	}
	return res, nil
}

// Unlambda rewrites src at the given level.
func (c *Client) Unlambda(ctx context.Context, level int, src string, shallow bool) (string, error) {
	resp, err := c.invoke(ctx, "Unlambda", fields{"level": level, "expr": src, "shallow": shallow})
	if err != nil {
		return "", err
	}
	return resp.str("expr"), nil
}
