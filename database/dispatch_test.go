package database

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rehiy/chat-led/models"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "chat-led-db-*")
	if err != nil {
		log.Fatal(err)
	}
	os.Setenv("DB_PATH", filepath.Join(dir, "test.db"))

	if err := InitDB(); err != nil {
		log.Fatal(err)
	}

	code := m.Run()

	Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func seedDispatch(t *testing.T, command, status string, at time.Time) *models.Dispatch {
	t.Helper()
	dispatch := &models.Dispatch{
		Utterance: "turn on the led",
		Command:   command,
		Status:    status,
		CreatedAt: at,
	}
	require.NoError(t, CreateDispatch(dispatch))
	require.NotZero(t, dispatch.ID)
	return dispatch
}

func TestDispatchListFilter(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedDispatch(t, "TURN_ON", "success", base)
	seedDispatch(t, "TURN_OFF", "success", base.Add(time.Minute))
	seedDispatch(t, "TURN_ON", "timeout", base.Add(2*time.Minute))

	list, total, err := GetDispatchList(&models.DispatchFilter{Status: "timeout", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "TURN_ON", list[0].Command)

	list, total, err = GetDispatchList(&models.DispatchFilter{Command: "TURN_ON", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)

	// 按时间窗过滤
	list, _, err = GetDispatchList(&models.DispatchFilter{
		StartTime: base.Add(30 * time.Second),
		EndTime:   base.Add(90 * time.Second),
		Limit:     10,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "TURN_OFF", list[0].Command)

	// 最新的记录排在最前
	list, _, err = GetDispatchList(&models.DispatchFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
}

func TestDispatchDelete(t *testing.T) {
	at := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	one := seedDispatch(t, "STATUS", "success", at)
	two := seedDispatch(t, "STATUS", "success", at.Add(time.Second))

	require.NoError(t, DeleteDispatch(one.ID))
	assert.Error(t, DeleteDispatch(one.ID))

	require.NoError(t, BatchDeleteDispatch([]int{two.ID}))
	assert.NoError(t, BatchDeleteDispatch(nil))

	_, total, err := GetDispatchList(&models.DispatchFilter{Command: "STATUS", Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSettingDefaults(t *testing.T) {
	settings, err := GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "true", settings["dispatchdb_enabled"])
	assert.Equal(t, "false", settings["webhook_enabled"])

	assert.True(t, IsDispatchdbEnabled())
	assert.False(t, IsWebhookEnabled())
}

func TestSettingToggle(t *testing.T) {
	require.NoError(t, SetWebhookEnabled(true))
	assert.True(t, IsWebhookEnabled())
	require.NoError(t, SetWebhookEnabled(false))
	assert.False(t, IsWebhookEnabled())

	require.NoError(t, SetDispatchdbEnabled(false))
	assert.False(t, IsDispatchdbEnabled())
	require.NoError(t, SetDispatchdbEnabled(true))
	assert.True(t, IsDispatchdbEnabled())
}

func TestWebhookCRUD(t *testing.T) {
	webhook := &models.Webhook{
		Name:    "ops",
		URL:     "http://example.com/hook",
		Enabled: true,
	}
	require.NoError(t, CreateWebhook(webhook))
	require.NotZero(t, webhook.ID)

	got, err := GetWebhook(webhook.ID)
	require.NoError(t, err)
	assert.Equal(t, "ops", got.Name)

	got.Enabled = false
	require.NoError(t, UpdateWebhook(got))

	enabled, err := GetEnabledWebhookList()
	require.NoError(t, err)
	for _, wh := range enabled {
		assert.NotEqual(t, webhook.ID, wh.ID)
	}

	require.NoError(t, DeleteWebhook(webhook.ID))
	assert.Error(t, DeleteWebhook(webhook.ID))

	_, err = GetWebhook(webhook.ID)
	assert.Error(t, err)
}
