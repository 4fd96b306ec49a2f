package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/Danigallego24/RutaN/internal/domain/events"
	"github.com/Danigallego24/RutaN/internal/domain/trip"
	"github.com/Danigallego24/RutaN/internal/infrastructure/log"
)

// DefaultDebounceDelay 编辑器保存时会连续触发多次事件
const DefaultDebounceDelay = 200 * time.Millisecond

// LoadRules 读取 YAML 规则表
//
//	styles: [relax, aventura]
//	cities: [madrid, "san sebastián"]
func LoadRules(path string) (trip.RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return trip.RuleTable{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules trip.RuleTable
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return trip.RuleTable{}, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if len(rules.Styles) == 0 && len(rules.Cities) == 0 {
		return trip.RuleTable{}, errors.New("rules file has no styles or cities")
	}
	return rules, nil
}

// RulesWatcher 监听规则文件并热替换提取器的规则表
// 文件无效时保留上一张规则表
type RulesWatcher struct {
	path      string
	extractor *trip.Extractor
	eventBus  events.EventBus
	logger    *slog.Logger
	debounce  time.Duration

	watcher *fsnotify.Watcher
	timerMu sync.Mutex
	timer   *time.Timer

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRulesWatcher 创建规则监听器，path 为空时 Start 不做任何事
func NewRulesWatcher(path string, extractor *trip.Extractor, eventBus events.EventBus) *RulesWatcher {
	return &RulesWatcher{
		path:      path,
		extractor: extractor,
		eventBus:  eventBus,
		logger:    log.NewModuleLogger("watcher", "rules"),
		debounce:  DefaultDebounceDelay,
		stopCh:    make(chan struct{}),
	}
}

// Start 加载一次规则表并开始监听所在目录
func (w *RulesWatcher) Start() error {
	if w.path == "" {
		w.logger.Debug("No rules file configured, using built-in rules")
		return nil
	}

	w.reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create rules watcher: %w", err)
	}

	// 监听目录而不是文件，覆盖式保存（rename）后仍能收到事件
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch rules directory: %w", err)
	}
	w.watcher = watcher

	w.wg.Add(1)
	go w.watchLoop()

	w.logger.Info("Rules watcher started", "path", w.path)
	return nil
}

// Stop 停止监听
func (w *RulesWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			w.watcher.Close()
		}
		w.wg.Wait()

		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()
	})
}

// watchLoop 事件循环
func (w *RulesWatcher) watchLoop() {
	defer w.wg.Done()

	target := filepath.Clean(w.path)
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Rules watcher error", "error", err)
		}
	}
}

// scheduleReload 防抖后重新加载
func (w *RulesWatcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload 读取文件并替换规则表
func (w *RulesWatcher) reload() {
	rules, err := LoadRules(w.path)
	if err != nil {
		w.logger.Warn("Keeping previous rules table",
			"path", w.path,
			"error", err,
		)
		return
	}

	w.extractor.SetRules(rules)
	current := w.extractor.Rules()

	w.logger.Info("Rules table reloaded",
		"path", w.path,
		"styles", len(current.Styles),
		"cities", len(current.Cities),
	)

	if w.eventBus != nil {
		w.eventBus.Publish(&events.RulesReloadedEvent{
			Source:    w.path,
			Styles:    len(current.Styles),
			Cities:    len(current.Cities),
			EventTime: time.Now(),
		})
	}
}
