package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danigallego24/RutaN/internal/domain/events"
	"github.com/Danigallego24/RutaN/internal/domain/trip"
)

func writeRules(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr bool
		want    trip.RuleTable
	}{
		{
			name:    "有效文件",
			content: "styles:\n  - mochilero\ncities:\n  - lisboa\n  - oporto\n",
			want:    trip.RuleTable{Styles: []string{"mochilero"}, Cities: []string{"lisboa", "oporto"}},
		},
		{
			name:    "只有城市",
			content: "cities: [roma]\n",
			want:    trip.RuleTable{Cities: []string{"roma"}},
		},
		{name: "空文件", content: "", wantErr: true},
		{name: "YAML 错误", content: "styles: [relax\n", wantErr: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "rules"+string(rune('a'+i))+".yaml")
			writeRules(t, path, tt.content)

			got, err := LoadRules(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := LoadRules(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRulesWatcher_NoFile(t *testing.T) {
	e := trip.NewDefaultExtractor()
	w := NewRulesWatcher("", e, nil)

	require.NoError(t, w.Start())
	w.Stop()

	assert.Equal(t, trip.DefaultRules().Cities, e.Rules().Cities)
}

func TestRulesWatcher_HotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "cities: [lisboa]\nstyles: [mochilero]\n")

	bus := NewEventBus()
	defer bus.Close()

	var reloads atomic.Int32
	bus.Subscribe(events.RulesReloaded, events.HandlerFunc(func(events.Event) error {
		reloads.Add(1)
		return nil
	}))

	e := trip.NewDefaultExtractor()
	w := NewRulesWatcher(path, e, bus)
	w.debounce = 10 * time.Millisecond

	require.NoError(t, w.Start())
	defer w.Stop()

	// 启动时立即加载
	assert.Equal(t, "Lisboa", e.Extract("me voy a lisboa").Destination)

	// 无效内容保留上一张表
	writeRules(t, path, "cities: [roma\n")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "Lisboa", e.Extract("me voy a lisboa").Destination)

	writeRules(t, path, "cities: [roma]\n")
	assert.Eventually(t, func() bool {
		return e.Extract("me voy a roma").Destination == "Roma"
	}, 2*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool { return reloads.Load() >= 2 }, time.Second, 10*time.Millisecond)
}

func TestRulesWatcher_MissingDirectory(t *testing.T) {
	e := trip.NewDefaultExtractor()
	w := NewRulesWatcher(filepath.Join(t.TempDir(), "nope", "rules.yaml"), e, nil)

	assert.Error(t, w.Start())
	w.Stop()

	// 加载失败时保留内置表
	assert.Equal(t, "Madrid", e.Extract("madrid").Destination)
}
