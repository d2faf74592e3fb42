package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"go-todo-api/backend/internal/config"
	"go-todo-api/backend/internal/database"
	"go-todo-api/backend/internal/metrics"
	"go-todo-api/backend/internal/models"
)

// RecentVisitorsLimit は一覧で返す訪問者の上限です。ページングはありません。
const RecentVisitorsLimit = 100

// VisitorRepository はvisitorsテーブルへのアクセスを担当します。
type VisitorRepository struct {
	DB *sqlx.DB
}

// NewVisitorRepository は新しいVisitorRepositoryインスタンスを作成します。
func NewVisitorRepository(db *sqlx.DB) *VisitorRepository {
	return &VisitorRepository{DB: db}
}

const visitorSelect = `
	SELECT id, ip_address, session_id, user_agent, referer, country, city,
		device_type, page_url, visit_count, visit_duration, created_at, last_visited
	FROM visitors`

const visitorInsert = `
	INSERT INTO visitors (
		ip_address, session_id, user_agent, referer, country, city,
		device_type, page_url, visit_count, visit_duration, created_at, last_visited
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`

// 2回目以降の訪問では visit_count を +1 し、visit_duration は今回の値で上書きする
const upsertOnConflict = visitorInsert + `
	ON CONFLICT (ip_address, session_id) DO UPDATE SET
		visit_count = visitors.visit_count + 1,
		visit_duration = excluded.visit_duration,
		last_visited = excluded.last_visited
	RETURNING id, visit_count`

// 挿入しようとした行は行エイリアス new で参照する (MySQL 8.0.19 以降)
const upsertOnDuplicateKey = visitorInsert + ` AS new
	ON DUPLICATE KEY UPDATE
		id = LAST_INSERT_ID(visitors.id),
		visit_count = visitors.visit_count + 1,
		visit_duration = new.visit_duration,
		last_visited = new.last_visited`

// Upsert は (ip_address, session_id) をキーに1文で挿入または訪問回数の加算を行います。
// 新規挿入だった場合は created=true を返します。
func (r *VisitorRepository) Upsert(ctx context.Context, v *models.Visitor) (visitor *models.Visitor, created bool, err error) {
	defer metrics.TrackDBOperation("upsert", "visitors").ObserveDuration()

	now := database.Now()
	args := []interface{}{
		v.IPAddress, v.SessionID, v.UserAgent, v.Referer, v.Country, v.City,
		v.DeviceType, v.PageURL, v.VisitDuration, now, now,
	}

	var id int64
	if r.DB.DriverName() == config.DriverMySQL {
		result, err := r.DB.ExecContext(ctx, upsertOnDuplicateKey, args...)
		if err != nil {
			log.Printf("Failed to upsert visitor: %v", err)
			return nil, false, fmt.Errorf("could not upsert visitor: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return nil, false, fmt.Errorf("could not get last insert ID: %w", err)
		}
		// MySQL は挿入で1、既存行の更新で2を返す
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, false, fmt.Errorf("could not get rows affected: %w", err)
		}
		created = affected == 1
	} else {
		var visitCount int
		err := r.DB.QueryRowxContext(ctx, r.DB.Rebind(upsertOnConflict), args...).Scan(&id, &visitCount)
		if err != nil {
			log.Printf("Failed to upsert visitor: %v", err)
			return nil, false, fmt.Errorf("could not upsert visitor: %w", err)
		}
		created = visitCount == 1
	}

	visitor, err = r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return visitor, created, nil
}

// FindByID は指定されたIDの訪問者を取得します。
func (r *VisitorRepository) FindByID(ctx context.Context, id int64) (*models.Visitor, error) {
	defer metrics.TrackDBOperation("select", "visitors").ObserveDuration()

	var v models.Visitor
	if err := r.DB.GetContext(ctx, &v, r.DB.Rebind(visitorSelect+" WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVisitorNotFound
		}
		return nil, fmt.Errorf("could not query visitor: %w", err)
	}
	return &v, nil
}

// FindRecent は最終訪問日時の新しい順に最大 limit 件を取得します。
func (r *VisitorRepository) FindRecent(ctx context.Context, limit int) ([]models.Visitor, error) {
	defer metrics.TrackDBOperation("select", "visitors").ObserveDuration()

	visitors := []models.Visitor{}
	query := r.DB.Rebind(visitorSelect + " ORDER BY last_visited DESC, id DESC LIMIT ?")
	if err := r.DB.SelectContext(ctx, &visitors, query, limit); err != nil {
		log.Printf("Failed to query visitors: %v", err)
		return nil, fmt.Errorf("could not query visitors: %w", err)
	}
	return visitors, nil
}

// Overview はユニークIP数・総訪問数・デバイス種別数・国数を1行で集計します。
// NULL は COUNT(DISTINCT ...) の対象外です。
func (r *VisitorRepository) Overview(ctx context.Context) (*models.VisitorOverview, error) {
	defer metrics.TrackDBOperation("aggregate", "visitors").ObserveDuration()

	var o models.VisitorOverview
	err := r.DB.GetContext(ctx, &o, `
		SELECT
			COUNT(DISTINCT ip_address) AS unique_visitors,
			COUNT(*) AS total_visits,
			COUNT(DISTINCT device_type) AS device_types,
			COUNT(DISTINCT country) AS countries
		FROM visitors`)
	if err != nil {
		log.Printf("Failed to aggregate visitors: %v", err)
		return nil, fmt.Errorf("could not aggregate visitors: %w", err)
	}
	return &o, nil
}

// CountByCountry は国ごとの件数を多い順に返します。country が NULL の行は含みません。
func (r *VisitorRepository) CountByCountry(ctx context.Context) ([]models.CountryCount, error) {
	defer metrics.TrackDBOperation("aggregate", "visitors").ObserveDuration()

	counts := []models.CountryCount{}
	err := r.DB.SelectContext(ctx, &counts, `
		SELECT country, COUNT(*) AS count
		FROM visitors
		WHERE country IS NOT NULL
		GROUP BY country
		ORDER BY count DESC, country ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not count visitors by country: %w", err)
	}
	return counts, nil
}

// CountByDeviceType はデバイス種別ごとの件数を多い順に返します。device_type が NULL の行は含みません。
func (r *VisitorRepository) CountByDeviceType(ctx context.Context) ([]models.DeviceCount, error) {
	defer metrics.TrackDBOperation("aggregate", "visitors").ObserveDuration()

	counts := []models.DeviceCount{}
	err := r.DB.SelectContext(ctx, &counts, `
		SELECT device_type, COUNT(*) AS count
		FROM visitors
		WHERE device_type IS NOT NULL
		GROUP BY device_type
		ORDER BY count DESC, device_type ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not count visitors by device: %w", err)
	}
	return counts, nil
}

// DeleteCreatedBefore は cutoff より前に作成された訪問者を削除し、削除件数を返します。
func (r *VisitorRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	defer metrics.TrackDBOperation("delete", "visitors").ObserveDuration()

	result, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM visitors WHERE created_at < ?"), cutoff.UTC())
	if err != nil {
		log.Printf("Failed to clean up visitors: %v", err)
		return 0, fmt.Errorf("could not delete old visitors: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not get rows affected: %w", err)
	}
	log.Printf("Visitor cleanup removed %d rows older than %s", deleted, cutoff.Format(time.RFC3339))
	return deleted, nil
}
