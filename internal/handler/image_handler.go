package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/hitoshi/travelbook/internal/model"
)

// ImageUploader は画像アップロードハンドラーが必要とするサービスインターフェース。
// storage.Serviceの部分集合として定義する。
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// ImageHandler は写真アップロードのHTTPハンドラー。
type ImageHandler struct {
	uploader ImageUploader
	maxSize  int64 // multipartボディの最大バイト数
}

// NewImageHandler はImageHandlerを生成する。
func NewImageHandler(uploader ImageUploader, maxSize int64) *ImageHandler {
	return &ImageHandler{
		uploader: uploader,
		maxSize:  maxSize,
	}
}

// imageResponse はアップロード成功時のレスポンス。
type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// Upload はmultipartフォームの"image"フィールドをオブジェクトストアに保存し、
// 公開URLを返す。
// POST /image-upload
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("multipartフォームの解析に失敗しました"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("image"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ファイルの読み取りに失敗しました"))
		return
	}

	// クライアント申告のContent-Typeを優先し、欠落時は先頭バイトから判定する
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	url, err := h.uploader.Upload(r.Context(), data, contentType)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, imageResponse{ImageURL: url})
}
