package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/scrubtech-backend/internal/models"
)

// ErrUserNotFound возвращается, когда пользователь отсутствует в базе.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `uid, email, username, password_hash, role, subscription_tier,
			      subscription_status, trial_end_date, specialty_locked_until,
			      stripe_customer_id, stripe_subscription_id, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var tier string
	var trialEndDate, lockedUntil sql.NullTime
	var customerID, subscriptionID sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&tier, &u.SubscriptionStatus, &trialEndDate, &lockedUntil,
		&customerID, &subscriptionID, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.SubscriptionTier = models.ParseTier(tier)
	if trialEndDate.Valid {
		u.TrialEndDate = &trialEndDate.Time
	}
	if lockedUntil.Valid {
		u.SpecialtyLockedUntil = &lockedUntil.Time
	}
	if customerID.Valid {
		u.StripeCustomerID = &customerID.String
	}
	if subscriptionID.Valid {
		u.StripeSubscriptionID = &subscriptionID.String
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (uid, email, username, password_hash, role,
			      subscription_tier, subscription_status, trial_end_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.Username, user.PasswordHash, user.Role,
		user.SubscriptionTier.String(), user.SubscriptionStatus,
		user.TrialEndDate).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByStripeSubscriptionID возвращает пользователя по идентификатору
// подписки платёжного провайдера.
func (s *Storage) GetUserByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	const op = "storage.GetUserByStripeSubscriptionID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_subscription_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, subscriptionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// AttachStripeSubscription сохраняет идентификаторы клиента и подписки
// провайдера и переводит пользователя на указанный тариф.
//
// Вызывается только из обработчика webhook-событий: тариф никогда
// не меняется напрямую по действию пользователя.
func (s *Storage) AttachStripeSubscription(ctx context.Context, userUID, customerID, subscriptionID string, tier models.Tier, status string) error {
	const op = "storage.AttachStripeSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET stripe_customer_id = $1, stripe_subscription_id = $2,
			      subscription_tier = $3, subscription_status = $4
			  WHERE uid = $5`
	result, err := s.DB.ExecContext(ctx, query,
		customerID, subscriptionID, tier.String(), status, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// UpdateSubscriptionTier обновляет тариф и статус подписки пользователя.
func (s *Storage) UpdateSubscriptionTier(ctx context.Context, userUID string, tier models.Tier, status string) error {
	const op = "storage.UpdateSubscriptionTier"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_tier = $1, subscription_status = $2
			  WHERE uid = $3`
	result, err := s.DB.ExecContext(ctx, query, tier.String(), status, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// ClearStripeSubscription сбрасывает подписку после её удаления у провайдера:
// тариф становится free, ссылка на подписку очищается. Идентификатор клиента
// сохраняется, чтобы пользователь мог оформить подписку повторно.
func (s *Storage) ClearStripeSubscription(ctx context.Context, userUID string) error {
	const op = "storage.ClearStripeSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_tier = 'free', subscription_status = 'canceled',
			      stripe_subscription_id = NULL
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
