package rpc

import (
	"fmt"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
)

// ToGatewayResults converts wire results. Failed entries carry an error
// wrapping common.ErrRemoteTransfer.
func ToGatewayResults(in []BatchResult) []gateway.BatchResult {
	out := make([]gateway.BatchResult, 0, len(in))
	for _, r := range in {
		br := gateway.BatchResult{FileName: r.FileName}
		if r.Success {
			br.Target = gateway.UploadTarget{PutURL: r.UploadURL, ObjectKey: r.FileKey, Bucket: r.BucketName}
		} else {
			br.Err = fmt.Errorf("%w: %s", common.ErrRemoteTransfer, r.Error)
		}
		out = append(out, br)
	}
	return out
}

func FileSpecs(files []gateway.UploadRequest) []FileSpec {
	out := make([]FileSpec, 0, len(files))
	for _, f := range files {
		out = append(out, FileSpec{FileName: f.FileName, FileType: f.FileType})
	}
	return out
}

func ToRemoteObjects(in []ObjectInfo) []gateway.RemoteObject {
	out := make([]gateway.RemoteObject, 0, len(in))
	for _, p := range in {
		out = append(out, gateway.RemoteObject{ObjectKey: p.FileKey, Size: p.Size, LastModified: p.LastModified})
	}
	return out
}
