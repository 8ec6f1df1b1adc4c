package impressions

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Record 代表一条推荐曝光记录：某个用户在某个场景下被展示过某个菜品
type Record struct {
	UserID    string `json:"user_id"`
	ItemName  string `json:"item_name"`
	Scene     string `json:"scene"` // e.g., "cart_addon"
	Timestamp int64  `json:"timestamp"`
}

// Store 定义曝光记录存储接口
type Store interface {
	// Recent 获取用户在指定场景下最近 N 天被展示过的菜品
	Recent(userID string, scene string, days int) ([]string, error)
	// Save 保存一批曝光记录
	Save(userID string, scene string, items []string) error
	// Cleanup 清理超过保留期的记录 (内存和文件同时清理)
	Cleanup(retainDays int) error
}

// FileStore 基于 JSONL 文件的曝光存储实现
type FileStore struct {
	filePath string
	mu       sync.RWMutex
	records  []Record // 内存缓存，用于快速查询
}

// NewFileStore 创建一个新的 FileStore
// 如果文件不存在，会自动创建
func NewFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		records:  make([]Record, 0),
	}

	if err := fs.load(); err != nil {
		return nil, err
	}

	return fs, nil
}

// load 从文件加载所有曝光记录到内存
func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open impressions file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			// 忽略损坏的行
			continue
		}
		s.records = append(s.records, record)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan impressions file: %w", err)
	}

	return nil
}

// Recent 获取用户最近 N 天的曝光记录 (返回菜品名列表)
func (s *FileStore) Recent(userID string, scene string, days int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Unix() - int64(days*24*60*60)

	var result []string
	// 简单的全量扫描，对当前数据量足够
	// 数据量大了可以换成 map[userID]map[scene][]Record 的索引结构
	for _, r := range s.records {
		if r.UserID == userID && r.Scene == scene && r.Timestamp >= cutoff {
			result = append(result, r.ItemName)
		}
	}

	return result, nil
}

// Save 保存新的曝光记录到文件和内存
func (s *FileStore) Save(userID string, scene string, items []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open impressions file for appending: %w", err)
	}
	defer f.Close()

	now := time.Now().Unix()
	encoder := json.NewEncoder(f)

	for _, item := range items {
		record := Record{
			UserID:    userID,
			ItemName:  item,
			Scene:     scene,
			Timestamp: now,
		}

		// 1. 写入文件
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write impression record: %w", err)
		}

		// 2. 更新内存
		s.records = append(s.records, record)
	}

	return nil
}

// Cleanup 删除超过 retainDays 天的记录
// 先写临时文件再原子替换，避免清理中途挂掉丢数据
func (s *FileStore) Cleanup(retainDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Unix() - int64(retainDays*24*60*60)

	kept := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if r.Timestamp >= cutoff {
			kept = append(kept, r)
		}
	}

	tmpPath := s.filePath + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp impressions file: %w", err)
	}

	encoder := json.NewEncoder(f)
	for _, r := range kept {
		if err := encoder.Encode(r); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to write impression record during cleanup: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp impressions file: %w", err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace impressions file: %w", err)
	}

	s.records = kept
	return nil
}
