package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/devfs/pkg/devfs"
	"github.com/example/devfs/pkg/fs"
)

// Field names used in Struct messages.
const (
	FieldPath    = "path"
	FieldMajor   = "major"
	FieldMinor   = "minor"
	FieldHandle  = "handle"
	FieldOffset  = "offset"
	FieldLength  = "length"
	FieldData    = "data"
	FieldType    = "type"
	FieldMode    = "mode"
	FieldSize    = "size"
	FieldBlocks  = "blocks"
	FieldName    = "name"
	FieldID      = "id"
	FieldEntries = "entries"
	FieldDevices = "devices"
)

// ErrBadField is returned when a Struct field is missing or malformed.
var ErrBadField = errors.New("bad message field")

// Target addresses a node either by path or by device number. A non-empty
// Path takes precedence. Device numbers travel as the base64 of
// DeviceID.Bytes; separate major and minor fields are accepted as well.
type Target struct {
	Path   string
	Device devfs.DeviceID
}

// ReadRequest asks for Length bytes from a device at Offset.
type ReadRequest struct {
	Target
	Offset uint64
	Length int
}

// WriteRequest writes Data to a device at Offset.
type WriteRequest struct {
	Target
	Offset uint64
	Data   []byte
}

// DeviceInfo describes a registered device.
type DeviceInfo struct {
	ID   devfs.DeviceID
	Type fs.FileType
}

func (t Target) fields() map[string]any {
	if t.Path != "" {
		return map[string]any{FieldPath: t.Path}
	}
	return map[string]any{
		FieldHandle: base64.StdEncoding.EncodeToString(t.Device.Bytes()),
	}
}

// ToStruct encodes the request.
func (r ReadRequest) ToStruct() (*structpb.Struct, error) {
	m := r.Target.fields()
	m[FieldOffset] = r.Offset
	m[FieldLength] = r.Length
	return structpb.NewStruct(m)
}

// ToStruct encodes the request. Data travels base64 encoded.
func (r WriteRequest) ToStruct() (*structpb.Struct, error) {
	m := r.Target.fields()
	m[FieldOffset] = r.Offset
	m[FieldData] = base64.StdEncoding.EncodeToString(r.Data)
	return structpb.NewStruct(m)
}

// ParseReadRequest decodes a request built by ReadRequest.ToStruct.
func ParseReadRequest(s *structpb.Struct) (ReadRequest, error) {
	target, err := parseTarget(s)
	if err != nil {
		return ReadRequest{}, err
	}
	offset, err := optionalUint(s, FieldOffset, math.MaxInt64)
	if err != nil {
		return ReadRequest{}, err
	}
	length, err := requiredUint(s, FieldLength, math.MaxInt32)
	if err != nil {
		return ReadRequest{}, err
	}
	return ReadRequest{Target: target, Offset: offset, Length: int(length)}, nil
}

// ParseWriteRequest decodes a request built by WriteRequest.ToStruct.
func ParseWriteRequest(s *structpb.Struct) (WriteRequest, error) {
	target, err := parseTarget(s)
	if err != nil {
		return WriteRequest{}, err
	}
	offset, err := optionalUint(s, FieldOffset, math.MaxInt64)
	if err != nil {
		return WriteRequest{}, err
	}

	v, ok := s.GetFields()[FieldData]
	if !ok {
		return WriteRequest{}, fmt.Errorf("%w: %s is required", ErrBadField, FieldData)
	}
	data, err := base64.StdEncoding.DecodeString(v.GetStringValue())
	if err != nil {
		return WriteRequest{}, fmt.Errorf("%w: %s: %w", ErrBadField, FieldData, err)
	}
	return WriteRequest{Target: target, Offset: offset, Data: data}, nil
}

func parseTarget(s *structpb.Struct) (Target, error) {
	if p := s.GetFields()[FieldPath].GetStringValue(); p != "" {
		return Target{Path: p}, nil
	}
	if v, ok := s.GetFields()[FieldHandle]; ok {
		data, err := base64.StdEncoding.DecodeString(v.GetStringValue())
		if err != nil {
			return Target{}, fmt.Errorf("%w: %s: %w", ErrBadField, FieldHandle, err)
		}
		id, err := devfs.ParseDeviceID(data)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %s: %w", ErrBadField, FieldHandle, err)
		}
		return Target{Device: id}, nil
	}
	major, err := requiredUint(s, FieldMajor, math.MaxUint32)
	if err != nil {
		return Target{}, err
	}
	minor, err := requiredUint(s, FieldMinor, math.MaxUint32)
	if err != nil {
		return Target{}, err
	}
	return Target{Device: devfs.MakeDev(uint32(major), uint32(minor))}, nil
}

func requiredUint(s *structpb.Struct, name string, limit uint64) (uint64, error) {
	if _, ok := s.GetFields()[name]; !ok {
		return 0, fmt.Errorf("%w: %s is required", ErrBadField, name)
	}
	return optionalUint(s, name, limit)
}

// optionalUint reads a non-negative integral number field, 0 when absent.
func optionalUint(s *structpb.Struct, name string, limit uint64) (uint64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a number", ErrBadField, name)
	}
	f := n.NumberValue
	if f < 0 || f != math.Trunc(f) || f > float64(limit) {
		return 0, fmt.Errorf("%w: %s out of range: %v", ErrBadField, name, f)
	}
	return uint64(f), nil
}

// AttrToStruct encodes node attributes.
func AttrToStruct(attr fs.NodeAttr) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldType:   attr.Type.String(),
		FieldMode:   uint32(attr.Mode),
		FieldSize:   attr.Size,
		FieldBlocks: attr.Blocks,
	})
}

// AttrFromStruct decodes attributes encoded by AttrToStruct.
func AttrFromStruct(s *structpb.Struct) fs.NodeAttr {
	f := s.GetFields()
	return fs.NodeAttr{
		Type:   fs.ParseFileType(f[FieldType].GetStringValue()),
		Mode:   fs.FileMode(f[FieldMode].GetNumberValue()),
		Size:   uint64(f[FieldSize].GetNumberValue()),
		Blocks: uint64(f[FieldBlocks].GetNumberValue()),
	}
}

// EntriesToStruct encodes directory entries.
func EntriesToStruct(entries []fs.DirEntry) (*structpb.Struct, error) {
	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, map[string]any{
			FieldName: e.Name,
			FieldType: e.Type.String(),
		})
	}
	return structpb.NewStruct(map[string]any{FieldEntries: list})
}

// EntriesFromStruct decodes entries encoded by EntriesToStruct.
func EntriesFromStruct(s *structpb.Struct) []fs.DirEntry {
	values := s.GetFields()[FieldEntries].GetListValue().GetValues()
	entries := make([]fs.DirEntry, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		entries = append(entries, fs.DirEntry{
			Name: f[FieldName].GetStringValue(),
			Type: fs.ParseFileType(f[FieldType].GetStringValue()),
		})
	}
	return entries
}

// DevicesToStruct encodes registered devices.
func DevicesToStruct(devices []DeviceInfo) (*structpb.Struct, error) {
	list := make([]any, 0, len(devices))
	for _, d := range devices {
		list = append(list, map[string]any{
			FieldID:    d.ID.String(),
			FieldMajor: d.ID.Major(),
			FieldMinor: d.ID.Minor(),
			FieldType:  d.Type.String(),
		})
	}
	return structpb.NewStruct(map[string]any{FieldDevices: list})
}

// DevicesFromStruct decodes devices encoded by DevicesToStruct.
func DevicesFromStruct(s *structpb.Struct) []DeviceInfo {
	values := s.GetFields()[FieldDevices].GetListValue().GetValues()
	devices := make([]DeviceInfo, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		devices = append(devices, DeviceInfo{
			ID: devfs.MakeDev(
				uint32(f[FieldMajor].GetNumberValue()),
				uint32(f[FieldMinor].GetNumberValue()),
			),
			Type: fs.ParseFileType(f[FieldType].GetStringValue()),
		})
	}
	return devices
}
