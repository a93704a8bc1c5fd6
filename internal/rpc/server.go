package rpc

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/dynamicpb"

	"localstore/internal/service"
	"localstore/internal/storage"
)

// StorageServer is the server API of localstore.v1.Storage.
type StorageServer interface {
	Length(context.Context, *OriginRequest) (*LengthResponse, error)
	Key(context.Context, *KeyRequest) (*ItemResponse, error)
	GetItem(context.Context, *ItemRequest) (*ItemResponse, error)
	SetItem(context.Context, *ItemRequest) (*Empty, error)
	RemoveItem(context.Context, *ItemRequest) (*Empty, error)
	Clear(context.Context, *OriginRequest) (*Empty, error)
}

// Server implements StorageServer on top of a storage service handle.
// Requests are forwarded unchanged: origins arrive precomputed and writes are
// not preceded by a read.
type Server struct {
	service service.Handle
	nodeID  string
	verbose bool
}

// NewServer creates a gRPC server for the storage service.
func NewServer(svc service.Handle, nodeID string, verbose bool) *Server {
	return &Server{
		service: svc,
		nodeID:  nodeID,
		verbose: verbose,
	}
}

// Length handles Length requests.
func (s *Server) Length(ctx context.Context, req *OriginRequest) (*LengthResponse, error) {
	s.logRequest("Length", req.Origin, "", req.ClientID, req.RequestID)

	n, err := s.service.Length(ctx, req.Origin)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LengthResponse{Length: n}, nil
}

// Key handles Key requests.
func (s *Server) Key(ctx context.Context, req *KeyRequest) (*ItemResponse, error) {
	s.logRequest("Key", req.Origin, "", req.ClientID, req.RequestID)

	item, err := s.service.Key(ctx, req.Origin, req.Index)
	if err != nil {
		return nil, toStatus(err)
	}
	return itemResponse(item), nil
}

// GetItem handles GetItem requests.
func (s *Server) GetItem(ctx context.Context, req *ItemRequest) (*ItemResponse, error) {
	s.logRequest("GetItem", req.Origin, req.Name, req.ClientID, req.RequestID)

	item, err := s.service.GetItem(ctx, req.Origin, req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return itemResponse(item), nil
}

// SetItem handles SetItem requests.
func (s *Server) SetItem(ctx context.Context, req *ItemRequest) (*Empty, error) {
	s.logRequest("SetItem", req.Origin, req.Name, req.ClientID, req.RequestID)

	if err := s.service.SetItem(req.Origin, req.Name, req.Value); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// RemoveItem handles RemoveItem requests.
func (s *Server) RemoveItem(ctx context.Context, req *ItemRequest) (*Empty, error) {
	s.logRequest("RemoveItem", req.Origin, req.Name, req.ClientID, req.RequestID)

	if err := s.service.RemoveItem(req.Origin, req.Name); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// Clear handles Clear requests.
func (s *Server) Clear(ctx context.Context, req *OriginRequest) (*Empty, error) {
	s.logRequest("Clear", req.Origin, "", req.ClientID, req.RequestID)

	if err := s.service.Clear(req.Origin); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) logRequest(method, origin, name, clientID, requestID string) {
	if !s.verbose {
		return
	}
	log.Printf("[%s] %s request: origin=%s, name=%s, client_id=%s, request_id=%s",
		s.nodeID, method, origin, name, clientID, requestID)
}

func itemResponse(item storage.Item) *ItemResponse {
	return &ItemResponse{Value: item.Value, Found: item.Present}
}

// toStatus maps service errors to gRPC status errors.
func toStatus(err error) error {
	if errors.Is(err, service.ErrStopped) {
		return status.Error(codes.Unavailable, err.Error())
	}
	if st := status.FromContextError(err); st.Code() != codes.Unknown {
		return st.Err()
	}
	return status.Error(codes.Internal, err.Error())
}

// RegisterStorageServer registers srv on r.
func RegisterStorageServer(r grpc.ServiceRegistrar, srv StorageServer) {
	r.RegisterService(&storageServiceDesc, srv)
}

var storageServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StorageServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Length", Handler: lengthHandler},
		{MethodName: "Key", Handler: keyHandler},
		{MethodName: "GetItem", Handler: getItemHandler},
		{MethodName: "SetItem", Handler: setItemHandler},
		{MethodName: "RemoveItem", Handler: removeItemHandler},
		{MethodName: "Clear", Handler: clearHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: FileName,
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary adapts a typed method to grpc.MethodDesc's handler signature. The
// request is decoded by the default proto codec into a dynamic message of the
// method's input type; interceptors see that message.
func unary[Req, Resp any, PReq interface {
	*Req
	Message
}, PResp interface {
	*Resp
	Message
}](method string, call func(StorageServer, context.Context, PReq) (PResp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := dynamicpb.NewMessage(PReq(new(Req)).descriptor())
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, msg any) (any, error) {
			req := PReq(new(Req))
			req.fromProto(msg.(proto.Message).ProtoReflect())
			resp, err := call(srv.(StorageServer), ctx, req)
			if err != nil {
				return nil, err
			}
			return resp.toProto(), nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	lengthHandler     = unary("Length", StorageServer.Length)
	keyHandler        = unary("Key", StorageServer.Key)
	getItemHandler    = unary("GetItem", StorageServer.GetItem)
	setItemHandler    = unary("SetItem", StorageServer.SetItem)
	removeItemHandler = unary("RemoveItem", StorageServer.RemoveItem)
	clearHandler      = unary("Clear", StorageServer.Clear)
)
