package services

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	ua "github.com/mileusna/useragent"

	"go-todo-api/backend/internal/config"
	"go-todo-api/backend/internal/metrics"
	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/repositories"
)

// RequestMeta はHTTPリクエストから取り出した、訪問者の識別に使う情報です。
type RequestMeta struct {
	ForwardedFor string // X-Forwarded-For ヘッダー
	RemoteAddr   string // 接続元アドレス (host:port も可)
	UserAgent    string // User-Agent ヘッダー
	Referer      string // Referer ヘッダー
}

// VisitorService は訪問者の記録と統計を扱います。
type VisitorService struct {
	visitorRepo   *repositories.VisitorRepository
	retentionDays int
	now           func() time.Time
}

// NewVisitorService は新しいVisitorServiceを作成します。
// retentionDays は Cleanup で日数が指定されなかったときの保持期間です。
func NewVisitorService(visitorRepo *repositories.VisitorRepository, retentionDays int) *VisitorService {
	return &VisitorService{visitorRepo: visitorRepo, retentionDays: retentionDays, now: time.Now}
}

// ClientIP はクライアントIPを決定します。
// X-Forwarded-For があればその先頭 (クライアント側) を、なければ接続元アドレスを使います。
func ClientIP(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	addr := strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// DeviceType は User-Agent 文字列からデバイス種別 (bot, tablet, mobile, desktop) を判定します。
// 判定できない場合は空文字を返します。
func DeviceType(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	parsed := ua.Parse(userAgent)
	switch {
	case parsed.Bot:
		return "bot"
	case parsed.Tablet:
		return "tablet"
	case parsed.Mobile:
		return "mobile"
	case parsed.Desktop:
		return "desktop"
	default:
		return ""
	}
}

// RecordVisit は訪問を記録します。同じ (IP, session_id) の訪問者がいれば visit_count を加算し、
// いなければ新規作成します。新規作成だった場合は created=true を返します。
func (s *VisitorService) RecordVisit(ctx context.Context, meta RequestMeta, req models.VisitorRequest) (*models.Visitor, bool, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, false, newValidationError("session_id", "Session ID must not be empty")
	}

	duration := 0
	if req.VisitDuration != nil {
		if *req.VisitDuration < 0 {
			return nil, false, newValidationError("visit_duration", "Visit duration must not be negative")
		}
		duration = *req.VisitDuration
	}

	v := &models.Visitor{
		IPAddress:     ClientIP(meta.ForwardedFor, meta.RemoteAddr),
		SessionID:     sessionID,
		UserAgent:     firstNonEmpty(req.UserAgent, meta.UserAgent),
		Referer:       firstNonEmpty(req.Referer, meta.Referer),
		Country:       req.Country,
		City:          req.City,
		DeviceType:    req.DeviceType,
		PageURL:       req.PageURL,
		VisitDuration: duration,
	}
	if v.DeviceType == nil && v.UserAgent != nil {
		if device := DeviceType(*v.UserAgent); device != "" {
			v.DeviceType = &device
		}
	}

	visitor, created, err := s.visitorRepo.Upsert(ctx, v)
	if err != nil {
		return nil, false, err
	}
	metrics.TrackVisit(created)
	return visitor, created, nil
}

// GetRecentVisitors は最終訪問の新しい順に最大100件を返します。
func (s *VisitorService) GetRecentVisitors(ctx context.Context) ([]models.Visitor, error) {
	return s.visitorRepo.FindRecent(ctx, repositories.RecentVisitorsLimit)
}

func (s *VisitorService) GetOverview(ctx context.Context) (*models.VisitorOverview, error) {
	return s.visitorRepo.Overview(ctx)
}

func (s *VisitorService) GetByCountry(ctx context.Context) ([]models.CountryCount, error) {
	return s.visitorRepo.CountByCountry(ctx)
}

func (s *VisitorService) GetByDevice(ctx context.Context) ([]models.DeviceCount, error) {
	return s.visitorRepo.CountByDeviceType(ctx)
}

// Cleanup は maxAgeDays 日より前に作成された訪問者を削除し、削除件数を返します。
// maxAgeDays が0なら設定された保持期間を使います。
func (s *VisitorService) Cleanup(ctx context.Context, maxAgeDays int) (int64, error) {
	if maxAgeDays < 0 || maxAgeDays > config.MaxVisitorRetentionDays {
		return 0, newValidationError("days", fmt.Sprintf("Days must be between 1 and %d", config.MaxVisitorRetentionDays))
	}
	if maxAgeDays == 0 {
		maxAgeDays = s.retentionDays
	}

	cutoff := s.now().AddDate(0, 0, -maxAgeDays)
	deleted, err := s.visitorRepo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	metrics.VisitorCleanupDeleted.Add(float64(deleted))
	return deleted, nil
}

// firstNonEmpty はボディの値を優先し、空ならヘッダーの値を使います。どちらも空なら nil です。
func firstNonEmpty(body *string, header string) *string {
	if body != nil && strings.TrimSpace(*body) != "" {
		return body
	}
	if header = strings.TrimSpace(header); header != "" {
		return &header
	}
	return nil
}
