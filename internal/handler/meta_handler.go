// Package handler はHTTPハンドラーを提供する。
package handler

import "net/http"

// AppInfo はルートエンドポイントで公開するアプリケーション情報。
type AppInfo struct {
	Name        string
	Description string
	Version     string
}

// MetaHandler はアプリケーション情報のHTTPハンドラー。
type MetaHandler struct {
	info AppInfo
}

// NewMetaHandler はMetaHandlerを生成する。
func NewMetaHandler(info AppInfo) *MetaHandler {
	return &MetaHandler{info: info}
}

// appInfoResponse はアプリケーション情報のAPIレスポンス。
type appInfoResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// Root はアプリケーション情報を返す。
// GET /
func (h *MetaHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, appInfoResponse{
		Name:        h.info.Name,
		Description: h.info.Description,
		Version:     h.info.Version,
	})
}
