package rpc

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"
)

//go:embed funski.proto
var protoSource string

const (
	protoFile   = "funski.proto"
	ServiceName = "funski.v1.Engine"
)

var (
	loadOnce sync.Once
	service  *desc.ServiceDescriptor
	loadErr  error
)

// serviceDescriptor parses the embedded proto once.
func serviceDescriptor() (*desc.ServiceDescriptor, error) {
	loadOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
		}
		fds, err := parser.ParseFiles(protoFile)
		if err != nil {
			loadErr = fmt.Errorf("parsing %s: %w", protoFile, err)
			return
		}
		service = fds[0].FindService(ServiceName)
		if service == nil {
			loadErr = fmt.Errorf("service %s not found in %s", ServiceName, protoFile)
		}
	})
	return service, loadErr
}

func methodPath(name string) string {
	return "/" + ServiceName + "/" + name
}

// fields is the plain Go form of a message: scalars, []any for repeated
// fields and nested fields for messages.
type fields map[string]any

// toMessage fills msg from f. Unknown names are ignored.
func toMessage(f fields, msg *dynamic.Message) error {
	for name, val := range f {
		fd := msg.GetMessageDescriptor().FindFieldByName(name)
		if fd == nil {
			continue
		}
		v, err := toProtoValue(val, fd)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if v != nil {
			if err := msg.TrySetField(fd, v); err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
		}
	}
	return nil
}

func toProtoValue(val any, fd *desc.FieldDescriptor) (any, error) {
	if !fd.IsRepeated() {
		return toProtoSingleValue(val, fd)
	}
	items, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("expected []any for repeated field, got %T", val)
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		v, err := toProtoSingleValue(item, fd)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func toProtoSingleValue(val any, fd *desc.FieldDescriptor) (any, error) {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32:
		if i, ok := val.(int); ok {
			return int32(i), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		if i, ok := val.(int); ok {
			return int64(i), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		if b, ok := val.(bool); ok {
			return b, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if s, ok := val.(string); ok {
			return s, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		if f, ok := val.(fields); ok {
			msg := dynamic.NewMessage(fd.GetMessageType())
			if err := toMessage(f, msg); err != nil {
				return nil, err
			}
			return msg, nil
		}
	}
	return nil, fmt.Errorf("unsupported conversion of %T to %v", val, fd.GetType())
}

// fromMessage is the inverse of toMessage. Every declared field is present,
// unset ones with their zero value.
func fromMessage(msg *dynamic.Message) fields {
	f := make(fields)
	for _, fd := range msg.GetMessageDescriptor().GetFields() {
		f[fd.GetName()] = fromProtoValue(msg.GetField(fd), fd)
	}
	return f
}

func fromProtoValue(val any, fd *desc.FieldDescriptor) any {
	if !fd.IsRepeated() {
		return fromProtoSingleValue(val)
	}
	items, _ := val.([]any)
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, fromProtoSingleValue(item))
	}
	return out
}

func fromProtoSingleValue(val any) any {
	switch v := val.(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case *dynamic.Message:
		return fromMessage(v)
	default:
		return v
	}
}

// Accessors for decoded fields.

func (f fields) str(name string) string {
	s, _ := f[name].(string)
	return s
}

func (f fields) int(name string) int {
	i, _ := f[name].(int)
	return i
}

func (f fields) bool(name string) bool {
	b, _ := f[name].(bool)
	return b
}

func (f fields) list(name string) []any {
	l, _ := f[name].([]any)
	return l
}
