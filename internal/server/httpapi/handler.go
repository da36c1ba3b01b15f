// Package httpapi is the HTTP face of the upload gateway. It hands out
// presigned URLs scoped to the caller, proxies and deletes objects and lists
// a folder. Every route except /health requires a bearer token.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/objects"
	"github.com/dmitrijs2005/photovault/internal/rpc"
	"github.com/rs/cors"
)

// MaxThumbnailWidth caps the width accepted by /proxy-image.
const MaxThumbnailWidth = 2048

// ObjectService is the object storage used by the handlers.
type ObjectService interface {
	PresignUpload(ctx context.Context, owner, folder, fileName, contentType string) (*objects.Target, error)
	PresignDownload(ctx context.Context, owner, key string) (*objects.Target, error)
	Delete(ctx context.Context, owner, key string) error
	List(ctx context.Context, owner, folder string) ([]objects.Object, error)
	Open(ctx context.Context, owner, key string) (io.ReadCloser, string, error)
}

type Handler struct {
	objects ObjectService
	secret  []byte
	logger  logging.Logger
}

func NewHandler(svc ObjectService, secret []byte, logger logging.Logger) *Handler {
	return &Handler{objects: svc, secret: secret, logger: logger.With("module", "httpapi")}
}

// Routes returns the full handler chain: recovery, CORS and the routes.
func (h *Handler) Routes(origins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /generate-upload-url", h.authenticate(h.generateUploadURL))
	mux.HandleFunc("POST /generate-upload-urls", h.authenticate(h.generateUploadURLs))
	mux.HandleFunc("GET /generate-download-url", h.authenticate(h.generateDownloadURL))
	mux.HandleFunc("GET /proxy-image", h.authenticate(h.proxyImage))
	mux.HandleFunc("DELETE /delete-image", h.authenticate(h.deleteImage))
	mux.HandleFunc("GET /list-photos", h.authenticate(h.listPhotos))

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return recovery(h.logger, c.Handler(mux))
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func owner(r *http.Request) string {
	id, _ := gateway.OwnerFrom(r.Context())
	return id
}

func requireFile(name, fileType string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(fileType) == "" {
		return fmt.Errorf("%w: fileName and fileType are required", common.ErrValidation)
	}
	return nil
}

func (h *Handler) generateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req rpc.UploadTargetRequest
	if err := parseJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := requireFile(req.FileName, req.FileType); err != nil {
		h.fail(w, r, err)
		return
	}

	t, err := h.objects.PresignUpload(r.Context(), owner(r), req.Folder, req.FileName, req.FileType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rpc.UploadTargetResponse{UploadURL: t.URL, FileKey: t.Key, BucketName: t.Bucket})
}

// generateUploadURLs presigns every file of the batch. Failures are reported
// per file and never fail the request as a whole.
func (h *Handler) generateUploadURLs(w http.ResponseWriter, r *http.Request) {
	var req rpc.BatchUploadRequest
	if err := parseJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(req.Files) == 0 {
		respondError(w, http.StatusBadRequest, "files are required")
		return
	}

	resp := rpc.BatchUploadResponse{Results: make([]rpc.BatchResult, 0, len(req.Files))}
	for _, f := range req.Files {
		res := rpc.BatchResult{FileName: f.FileName}
		if err := requireFile(f.FileName, f.FileType); err != nil {
			res.Error = err.Error()
			resp.Results = append(resp.Results, res)
			continue
		}
		t, err := h.objects.PresignUpload(r.Context(), owner(r), req.Folder, f.FileName, f.FileType)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
			res.UploadURL, res.FileKey, res.BucketName = t.URL, t.Key, t.Bucket
		}
		resp.Results = append(resp.Results, res)
	}
	respondJSON(w, http.StatusOK, resp)
}

func fileKey(r *http.Request) (string, error) {
	key := r.URL.Query().Get("fileKey")
	if key == "" {
		return "", fmt.Errorf("%w: fileKey is required", common.ErrValidation)
	}
	return key, nil
}

func (h *Handler) generateDownloadURL(w http.ResponseWriter, r *http.Request) {
	key, err := fileKey(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.objects.PresignDownload(r.Context(), owner(r), key)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rpc.DownloadTargetResponse{DownloadURL: t.URL, FileKey: t.Key, BucketName: t.Bucket})
}

// proxyImage streams the object through the gateway. With width set the image
// is decoded and scaled down to that width, keeping its aspect ratio.
func (h *Handler) proxyImage(w http.ResponseWriter, r *http.Request) {
	key, err := fileKey(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	width := 0
	if v := r.URL.Query().Get("width"); v != "" {
		width, err = strconv.Atoi(v)
		if err != nil || width <= 0 || width > MaxThumbnailWidth {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("width must be between 1 and %d", MaxThumbnailWidth))
			return
		}
	}

	body, contentType, err := h.objects.Open(r.Context(), owner(r), key)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer body.Close()

	if width == 0 {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Header().Set("Cache-Control", "private, max-age=300")
		if _, err := io.Copy(w, body); err != nil {
			h.logger.Warn(r.Context(), "proxy copy interrupted", "key", key, "error", err)
		}
		return
	}

	img, err := imaging.Decode(body, imaging.AutoOrientation(true))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "object is not a decodable image")
		return
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=300")
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		h.logger.Warn(r.Context(), "thumbnail encode failed", "key", key, "error", err)
	}
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	key, err := fileKey(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.objects.Delete(r.Context(), owner(r), key); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listPhotos(w http.ResponseWriter, r *http.Request) {
	objs, err := h.objects.List(r.Context(), owner(r), r.URL.Query().Get("folder"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := rpc.ListObjectsResponse{Photos: make([]rpc.ObjectInfo, 0, len(objs))}
	for _, o := range objs {
		resp.Photos = append(resp.Photos, rpc.ObjectInfo{FileKey: o.Key, Size: o.Size, LastModified: o.LastModified})
	}
	respondJSON(w, http.StatusOK, resp)
}
