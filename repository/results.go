package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"go-durak/entities"
)

var ErrResultNotFound = errors.New("对局记录不存在")

const (
	DefaultResultLimit = 20
	MaxResultLimit     = 200
)

// ResultStore 对局结果归档，生产环境用 MySQL，本地和测试用 SQLite
type ResultStore struct {
	db     *sql.DB
	driver string
}

func OpenResults(driver, dsn string) (*ResultStore, error) {
	switch driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if driver == "sqlite" {
		// SQLite 只允许单个写连接，内存库也需要共用同一个连接
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return &ResultStore{db: db, driver: driver}, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

func (s *ResultStore) Migrate(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	textType := "TEXT"
	if s.driver == "mysql" {
		idColumn = "id BIGINT PRIMARY KEY AUTO_INCREMENT"
		textType = "LONGTEXT"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS game_results (
		%s,
		room_id VARCHAR(32) NOT NULL,
		round INTEGER NOT NULL DEFAULT 0,
		players %s NOT NULL,
		loser VARCHAR(64) NOT NULL DEFAULT '',
		draw BOOLEAN NOT NULL DEFAULT FALSE,
		finish_order %s NOT NULL,
		moves %s NOT NULL,
		created_at BIGINT NOT NULL
	)`, idColumn, textType, textType, textType)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("创建 game_results 表失败: %w", err)
	}
	return nil
}

func (s *ResultStore) SaveResult(ctx context.Context, rec *entities.GameRecord) error {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}
	order, err := json.Marshal(rec.FinishOrder)
	if err != nil {
		return err
	}
	moves, err := json.Marshal(rec.Moves)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO game_results (room_id, round, players, loser, draw, finish_order, moves, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RoomID, rec.Round, string(players), rec.Loser, rec.Draw, string(order), string(moves), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("写入对局记录失败: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

const selectResult = `SELECT id, room_id, round, players, loser, draw, finish_order, moves, created_at FROM game_results`

// ListResults 按时间倒序返回最近的对局，不带走子记录
func (s *ResultStore) ListResults(ctx context.Context, limit int) ([]entities.GameRecord, error) {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	if limit > MaxResultLimit {
		limit = MaxResultLimit
	}
	rows, err := s.db.QueryContext(ctx, selectResult+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询对局记录失败: %w", err)
	}
	defer rows.Close()

	records := []entities.GameRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		rec.Moves = nil
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *ResultStore) GetResult(ctx context.Context, id int64) (*entities.GameRecord, error) {
	row := s.db.QueryRowContext(ctx, selectResult+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*entities.GameRecord, error) {
	var (
		rec                   entities.GameRecord
		players, order, moves string
	)
	if err := row.Scan(&rec.ID, &rec.RoomID, &rec.Round, &players, &rec.Loser, &rec.Draw, &order, &moves, &rec.CreatedAt); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		raw string
		dst interface{}
	}{
		{players, &rec.Players},
		{order, &rec.FinishOrder},
		{moves, &rec.Moves},
	} {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("解析对局记录[%d]失败: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
