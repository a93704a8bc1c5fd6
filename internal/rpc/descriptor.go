package rpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// FileName is the registered path of the storage protocol file, mirrored by
// api/localstore/v1/storage.proto.
const FileName = "localstore/v1/storage.proto"

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "localstore.v1.Storage"

var (
	storageFile protoreflect.FileDescriptor

	originRequestDesc  protoreflect.MessageDescriptor
	keyRequestDesc     protoreflect.MessageDescriptor
	itemRequestDesc    protoreflect.MessageDescriptor
	lengthResponseDesc protoreflect.MessageDescriptor
	itemResponseDesc   protoreflect.MessageDescriptor
	emptyDesc          protoreflect.MessageDescriptor
)

func init() {
	fd, err := protodesc.NewFile(storageFileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("rpc: build %s: %v", FileName, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("rpc: register %s: %v", FileName, err))
	}

	storageFile = fd
	msgs := fd.Messages()
	originRequestDesc = msgs.ByName("OriginRequest")
	keyRequestDesc = msgs.ByName("KeyRequest")
	itemRequestDesc = msgs.ByName("ItemRequest")
	lengthResponseDesc = msgs.ByName("LengthResponse")
	itemResponseDesc = msgs.ByName("ItemResponse")
	emptyDesc = msgs.ByName("Empty")
}

// StorageFile returns the descriptor of the storage protocol.
func StorageFile() protoreflect.FileDescriptor {
	return storageFile
}

// storageFileProto describes api/localstore/v1/storage.proto.
func storageFileProto() *descriptorpb.FileDescriptorProto {
	const (
		str     = descriptorpb.FieldDescriptorProto_TYPE_STRING
		u32     = descriptorpb.FieldDescriptorProto_TYPE_UINT32
		boolean = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	)

	// Every request carries the caller's IDs for log correlation.
	requestIDs := func(fields ...*descriptorpb.FieldDescriptorProto) []*descriptorpb.FieldDescriptorProto {
		return append(fields, field("client_id", 14, str), field("request_id", 15, str))
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(FileName),
		Package: proto.String("localstore.v1"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("OriginRequest", requestIDs(field("origin", 1, str))...),
			message("KeyRequest", requestIDs(field("origin", 1, str), field("index", 2, u32))...),
			message("ItemRequest", requestIDs(field("origin", 1, str), field("name", 2, str), field("value", 3, str))...),
			message("LengthResponse", field("length", 1, u32)),
			message("ItemResponse", field("value", 1, str), field("found", 2, boolean)),
			message("Empty"),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Storage"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("Length", "OriginRequest", "LengthResponse"),
				method("Key", "KeyRequest", "ItemResponse"),
				method("GetItem", "ItemRequest", "ItemResponse"),
				method("SetItem", "ItemRequest", "Empty"),
				method("RemoveItem", "ItemRequest", "Empty"),
				method("Clear", "OriginRequest", "Empty"),
			},
		}},
	}
}

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

func method(name, input, output string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(".localstore.v1." + input),
		OutputType: proto.String(".localstore.v1." + output),
	}
}
