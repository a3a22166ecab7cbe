package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeliver(t *testing.T) {
	t.Run(`вебхук доставляется как JSON`, func(t *testing.T) {
		var got map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		impl{}.deliver(srv.URL, map[string]interface{}{"text": "тест"}, "slack")
		require.Equal(t, "тест", got["text"])
	})

	t.Run(`редиректы скриптов Sheets отслеживаются вручную`, func(t *testing.T) {
		var hops int32
		var delivered int32
		mux := http.NewServeMux()
		mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hops, 1)
			http.Redirect(w, r, "/final", http.StatusFound)
		})
		mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&delivered, 1)
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		impl{}.deliver(srv.URL+"/hop", map[string]interface{}{"a": 1}, "sheets")
		require.EqualValues(t, 1, atomic.LoadInt32(&hops))
		require.EqualValues(t, 1, atomic.LoadInt32(&delivered))
	})

	t.Run(`бесконечный редирект обрывается по глубине`, func(t *testing.T) {
		var hops int32
		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hops, 1)
			http.Redirect(w, r, srv.URL, http.StatusMovedPermanently)
		}))
		defer srv.Close()

		impl{}.deliver(srv.URL, map[string]interface{}{}, "sheets")
		require.EqualValues(t, maxRedirects+1, atomic.LoadInt32(&hops))
	})

	t.Run(`пустой адрес - отправка пропускается`, func(t *testing.T) {
		impl{}.deliver("", map[string]interface{}{}, "slack")
	})
}
