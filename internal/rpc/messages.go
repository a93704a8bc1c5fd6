package rpc

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Message is implemented by the Go views of the storage protocol messages.
// On the wire they travel as dynamicpb messages built from StorageFile.
type Message interface {
	descriptor() protoreflect.MessageDescriptor
	toProto() *dynamicpb.Message
	fromProto(protoreflect.Message)
}

// OriginRequest addresses a whole origin (Length, Clear).
type OriginRequest struct {
	Origin    string
	ClientID  string
	RequestID string
}

// KeyRequest asks for the key at Index.
type KeyRequest struct {
	Origin    string
	Index     uint32
	ClientID  string
	RequestID string
}

// ItemRequest addresses one item (GetItem, SetItem, RemoveItem).
type ItemRequest struct {
	Origin    string
	Name      string
	Value     string
	ClientID  string
	RequestID string
}

// LengthResponse carries the item count of an origin.
type LengthResponse struct {
	Length uint32
}

// ItemResponse carries an optional string. Found distinguishes an absent
// item from an empty value.
type ItemResponse struct {
	Value string
	Found bool
}

// Empty acknowledges a queued write.
type Empty struct{}

func (m *OriginRequest) descriptor() protoreflect.MessageDescriptor { return originRequestDesc }

func (m *OriginRequest) toProto() *dynamicpb.Message {
	msg := dynamicpb.NewMessage(originRequestDesc)
	setString(msg, "origin", m.Origin)
	setString(msg, "client_id", m.ClientID)
	setString(msg, "request_id", m.RequestID)
	return msg
}

func (m *OriginRequest) fromProto(msg protoreflect.Message) {
	m.Origin = getString(msg, "origin")
	m.ClientID = getString(msg, "client_id")
	m.RequestID = getString(msg, "request_id")
}

func (m *KeyRequest) descriptor() protoreflect.MessageDescriptor { return keyRequestDesc }

func (m *KeyRequest) toProto() *dynamicpb.Message {
	msg := dynamicpb.NewMessage(keyRequestDesc)
	setString(msg, "origin", m.Origin)
	setUint32(msg, "index", m.Index)
	setString(msg, "client_id", m.ClientID)
	setString(msg, "request_id", m.RequestID)
	return msg
}

func (m *KeyRequest) fromProto(msg protoreflect.Message) {
	m.Origin = getString(msg, "origin")
	m.Index = uint32(get(msg, "index").Uint())
	m.ClientID = getString(msg, "client_id")
	m.RequestID = getString(msg, "request_id")
}

func (m *ItemRequest) descriptor() protoreflect.MessageDescriptor { return itemRequestDesc }

func (m *ItemRequest) toProto() *dynamicpb.Message {
	msg := dynamicpb.NewMessage(itemRequestDesc)
	setString(msg, "origin", m.Origin)
	setString(msg, "name", m.Name)
	setString(msg, "value", m.Value)
	setString(msg, "client_id", m.ClientID)
	setString(msg, "request_id", m.RequestID)
	return msg
}

func (m *ItemRequest) fromProto(msg protoreflect.Message) {
	m.Origin = getString(msg, "origin")
	m.Name = getString(msg, "name")
	m.Value = getString(msg, "value")
	m.ClientID = getString(msg, "client_id")
	m.RequestID = getString(msg, "request_id")
}

func (m *LengthResponse) descriptor() protoreflect.MessageDescriptor { return lengthResponseDesc }

func (m *LengthResponse) toProto() *dynamicpb.Message {
	msg := dynamicpb.NewMessage(lengthResponseDesc)
	setUint32(msg, "length", m.Length)
	return msg
}

func (m *LengthResponse) fromProto(msg protoreflect.Message) {
	m.Length = uint32(get(msg, "length").Uint())
}

func (m *ItemResponse) descriptor() protoreflect.MessageDescriptor { return itemResponseDesc }

func (m *ItemResponse) toProto() *dynamicpb.Message {
	msg := dynamicpb.NewMessage(itemResponseDesc)
	setString(msg, "value", m.Value)
	if m.Found {
		msg.Set(fieldByName(msg, "found"), protoreflect.ValueOfBool(true))
	}
	return msg
}

func (m *ItemResponse) fromProto(msg protoreflect.Message) {
	m.Value = getString(msg, "value")
	m.Found = get(msg, "found").Bool()
}

func (m *Empty) descriptor() protoreflect.MessageDescriptor { return emptyDesc }

func (m *Empty) toProto() *dynamicpb.Message { return dynamicpb.NewMessage(emptyDesc) }

func (m *Empty) fromProto(protoreflect.Message) {}

func fieldByName(msg protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	fd := msg.Descriptor().Fields().ByName(name)
	if fd == nil {
		panic("rpc: " + string(msg.Descriptor().FullName()) + " has no field " + string(name))
	}
	return fd
}

func get(msg protoreflect.Message, name protoreflect.Name) protoreflect.Value {
	return msg.Get(fieldByName(msg, name))
}

func getString(msg protoreflect.Message, name protoreflect.Name) string {
	return get(msg, name).String()
}

// setString leaves empty strings unset, as proto3 does for scalar defaults.
func setString(msg protoreflect.Message, name protoreflect.Name, v string) {
	if v == "" {
		return
	}
	msg.Set(fieldByName(msg, name), protoreflect.ValueOfString(v))
}

func setUint32(msg protoreflect.Message, name protoreflect.Name, v uint32) {
	if v == 0 {
		return
	}
	msg.Set(fieldByName(msg, name), protoreflect.ValueOfUint32(v))
}
