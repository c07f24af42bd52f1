// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// 壓縮門檻：batch 回應常常很大，小回應壓縮不划算
const minCompressSize = 512

// encoder 是 gzip.Writer / zstd.Encoder 的共同行為
type encoder interface {
	io.Writer
	Reset(w io.Writer)
	Flush() error
	Close() error
}

// codec 一種 Content-Encoding 與它的 encoder 池
type codec struct {
	name string
	pool sync.Pool
}

var codecs = []*codec{
	{name: "zstd", pool: sync.Pool{New: func() any {
		zw, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1),
		)
		return zw
	}}},
	{name: "gzip", pool: sync.Pool{New: func() any {
		gw, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return gw
	}}},
}

// pick 依 Accept-Encoding 選擇 codec（zstd 優先）
func pick(accept string) *codec {
	accept = strings.ToLower(accept)
	for _, c := range codecs {
		if strings.Contains(accept, c.name) {
			return c
		}
	}
	return nil
}

// compressWriter 延遲到第一次寫 body 才決定要不要壓縮
type compressWriter struct {
	http.ResponseWriter
	c       *codec
	enc     encoder
	status  int
	decided bool
}

func (cw *compressWriter) WriteHeader(code int) {
	if cw.decided || cw.status != 0 {
		return
	}
	cw.status = code
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if !cw.decided {
		cw.decide(b)
	}
	if cw.enc != nil {
		return cw.enc.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *compressWriter) decide(first []byte) {
	cw.decided = true
	h := cw.Header()
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	// 壓縮後就無法嗅探，先用原始內容決定
	if len(first) > 0 && h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(first))
	}
	// 1xx / 204 / 304 沒有 body；已經被別人編碼過的也不碰
	noBody := cw.status < 200 || cw.status == http.StatusNoContent || cw.status == http.StatusNotModified
	if !noBody && len(first) >= minCompressSize && h.Get("Content-Encoding") == "" {
		h.Del("Content-Length")
		h.Set("Content-Encoding", cw.c.name)
		h.Add("Vary", "Accept-Encoding")
		cw.enc = cw.c.pool.Get().(encoder)
		cw.enc.Reset(cw.ResponseWriter)
	}
	cw.ResponseWriter.WriteHeader(cw.status)
}

func (cw *compressWriter) Flush() {
	if !cw.decided {
		cw.decide(nil)
	}
	if cw.enc != nil {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) close() {
	if !cw.decided {
		// handler 沒寫 body：補送 header
		cw.decide(nil)
	}
	if cw.enc != nil {
		_ = cw.enc.Close()
		cw.enc.Reset(io.Discard)
		cw.c.pool.Put(cw.enc)
		cw.enc = nil
	}
}

// Compression 依 Accept-Encoding 回 zstd 或 gzip；HEAD 與 upgrade 請求直接放行。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || r.Header.Get("Upgrade") != "" {
			next.ServeHTTP(w, r)
			return
		}
		c := pick(r.Header.Get("Accept-Encoding"))
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}
		cw := &compressWriter{ResponseWriter: w, c: c}
		defer cw.close()
		next.ServeHTTP(cw, r)
	})
}
