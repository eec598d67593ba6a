package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmedina/cfewatch/internal/types"
)

func TestFormatNewTender(t *testing.T) {
	got := FormatEvent(types.ChangeEvent{
		Kind:        types.EventNewTender,
		ID:          "CFE-0201-00123",
		Description: "Suministro de transformadores",
		Published:   "01/01/2024",
	})

	want := "⚠️ *Nueva licitación*:\n" +
		"- Suministro de transformadores\n" +
		"- CFE-0201-00123\n" +
		"- Fecha: 01/01/2024"
	assert.Equal(t, want, got)
}

func TestFormatFieldChange(t *testing.T) {
	got := FormatEvent(types.ChangeEvent{
		Kind:        types.EventFieldChange,
		ID:          "CFE-0201-00123",
		Description: "Suministro de transformadores",
		Diffs: []types.FieldDiff{
			{Field: "Estado", Old: "Abierto", New: "Fallo"},
			{Field: "Adjudicado a", Old: "", New: "ACME"},
			{Field: "Monto", Old: "$1", New: "$100"},
		},
	})

	want := "ℹ️ *Cambio detectado*:\n" +
		"- Suministro de transformadores\n" +
		"- CFE-0201-00123\n" +
		"- Estado: Abierto → Fallo\n" +
		"- Adjudicado a:  → ACME\n" +
		"- Monto: $1 → $100"
	assert.Equal(t, want, got)
}

func TestTelegramNotify(t *testing.T) {
	var gotPath string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"chat_id":    r.PostFormValue("chat_id"),
			"text":       r.PostFormValue("text"),
			"parse_mode": r.PostFormValue("parse_mode"),
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("bot-token", "chat-42", zap.NewNop())
	tg.base = srv.URL

	err := tg.Notify(context.Background(), "hola")
	require.NoError(t, err)

	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "chat-42", gotForm["chat_id"])
	assert.Equal(t, "hola", gotForm["text"])
	assert.Equal(t, "Markdown", gotForm["parse_mode"])
}

func TestTelegramNotifyFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	tg := NewTelegram("bot-token", "chat-42", zap.NewNop())
	tg.base = srv.URL

	err := tg.Notify(context.Background(), "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "chat not found")
}
