// Package rpc defines the gRPC surface of the upload gateway. Messages are
// plain structs carried by a JSON codec; protobuf well-known types are used
// where a request or response is a single scalar.
package rpc

import "time"

type UploadTargetRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Folder   string `json:"folder,omitempty"`
}

type UploadTargetResponse struct {
	UploadURL  string `json:"uploadUrl"`
	FileKey    string `json:"fileKey"`
	BucketName string `json:"bucketName"`
}

type FileSpec struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

type BatchUploadRequest struct {
	Files  []FileSpec `json:"files"`
	Folder string     `json:"folder,omitempty"`
}

// BatchResult reports one file of a batch. Error is set only when Success is
// false.
type BatchResult struct {
	FileName   string `json:"fileName"`
	Success    bool   `json:"success"`
	UploadURL  string `json:"uploadUrl,omitempty"`
	FileKey    string `json:"fileKey,omitempty"`
	BucketName string `json:"bucketName,omitempty"`
	Error      string `json:"error,omitempty"`
}

type BatchUploadResponse struct {
	Results []BatchResult `json:"results"`
}

type DownloadTargetResponse struct {
	DownloadURL string `json:"downloadUrl"`
	FileKey     string `json:"fileKey"`
	BucketName  string `json:"bucketName"`
}

type ObjectInfo struct {
	FileKey      string    `json:"fileKey"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

type ListObjectsResponse struct {
	Photos []ObjectInfo `json:"photos"`
}
