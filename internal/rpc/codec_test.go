package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodec_PlainStructs(t *testing.T) {
	var c Codec
	b, err := c.Marshal(&UploadTargetRequest{FileName: "a.jpg", FileType: "image/jpeg"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fileName":"a.jpg","fileType":"image/jpeg"}`, string(b))

	var got UploadTargetRequest
	require.NoError(t, c.Unmarshal([]byte(`{"fileName":"b.png","fileType":"image/png","folder":"Trips"}`), &got))
	assert.Equal(t, UploadTargetRequest{FileName: "b.png", FileType: "image/png", Folder: "Trips"}, got)
}

func TestCodec_WellKnownTypes(t *testing.T) {
	var c Codec
	b, err := c.Marshal(wrapperspb.String("users/u1/root/a.jpg"))
	require.NoError(t, err)
	assert.JSONEq(t, `"users/u1/root/a.jpg"`, string(b))

	got := &wrapperspb.StringValue{}
	require.NoError(t, c.Unmarshal(b, got))
	assert.Equal(t, "users/u1/root/a.jpg", got.GetValue())
}
