package repo

import (
	"context"

	"github.com/Skotchmaster/notes/internal/models"
)

func (r *GormRepo) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&rt).Error; err != nil {
		return nil, notFound(err)
	}
	return &rt, nil
}

func (r *GormRepo) Add(ctx context.Context, rt *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(rt).Error
}

func (r *GormRepo) Update(ctx context.Context, rt *models.RefreshToken) error {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", rt.Token).
		Updates(map[string]any{
			"used":        rt.Used,
			"invalidated": rt.Invalidated,
			"expire_date": rt.ExpireDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeRefreshToken flips used to true only if the row is still unused and
// not invalidated. It reports false when another caller got there first.
func (r *GormRepo) ConsumeRefreshToken(ctx context.Context, token string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND used = ? AND invalidated = ?", token, false, false).
		Update("used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
