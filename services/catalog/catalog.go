// Package catalog reads and writes courses and their content tree.
package catalog

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"school/apperr"
	"school/models/course"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

type CourseInput struct {
	Slug          string
	Title         string
	Description   string
	ImageURL      string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	ValidityDays  int
	IsActive      *bool
	IsFeatured    bool
}

type Filter struct {
	FeaturedOnly    bool
	IncludeInactive bool
}

func (in CourseInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.InvalidInput("title is required")
	}
	if in.Price.IsNegative() {
		return apperr.InvalidInput("price must not be negative")
	}
	if in.DiscountPrice != nil && (in.DiscountPrice.IsNegative() || in.DiscountPrice.GreaterThan(in.Price)) {
		return apperr.InvalidInput("discount price must be between 0 and price")
	}
	if in.ValidityDays < 0 {
		return apperr.InvalidInput("validity days must not be negative")
	}
	return nil
}

func Create(ctx context.Context, db *gorm.DB, in CourseInput) (*course.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if err := ensureSlugFree(ctx, db, slug, 0); err != nil {
		return nil, err
	}

	c := course.Course{
		Slug:          slug,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		ValidityDays:  in.ValidityDays,
		IsActive:      in.IsActive == nil || *in.IsActive,
		IsFeatured:    in.IsFeatured,
	}
	if c.ValidityDays == 0 {
		c.ValidityDays = course.DefaultValidityDays
	}
	if err := db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &c, nil
}

func Update(ctx context.Context, db *gorm.DB, id uint, in CourseInput) (*course.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if in.Slug != "" && in.Slug != c.Slug {
		if err := ensureSlugFree(ctx, db, in.Slug, id); err != nil {
			return nil, err
		}
		c.Slug = in.Slug
	}
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.ImageURL = in.ImageURL
	c.Price = in.Price
	c.DiscountPrice = in.DiscountPrice
	if in.ValidityDays > 0 {
		c.ValidityDays = in.ValidityDays
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.IsFeatured = in.IsFeatured

	if err := db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func Get(ctx context.Context, db *gorm.DB, id uint) (*course.Course, error) {
	var c course.Course
	err := db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("course %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &c, nil
}

// GetBySlug returns an active course with its modules, lessons and exam
// headers. Questions are not loaded.
func GetBySlug(ctx context.Context, db *gorm.DB, slug string) (*course.Course, error) {
	var c course.Course
	err := db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		Preload("Modules", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("Modules.Lessons", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("Modules.Exam").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("course %q not found", slug)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &c, nil
}

// WithContent loads a course by id with its full module tree.
func WithContent(ctx context.Context, db *gorm.DB, id uint) (*course.Course, error) {
	var c course.Course
	err := db.WithContext(ctx).
		Preload("Modules", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("Modules.Lessons", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("Modules.Exam").
		First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("course %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &c, nil
}

func List(ctx context.Context, db *gorm.DB, f Filter) ([]course.Course, error) {
	q := db.WithContext(ctx).Model(&course.Course{})
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.FeaturedOnly {
		q = q.Where("is_featured = ?", true)
	}
	var courses []course.Course
	if err := q.Order("created_at desc").Find(&courses).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return courses, nil
}

// FindByIDs returns active courses keyed by id. Missing ids are simply absent.
func FindByIDs(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]course.Course, error) {
	var courses []course.Course
	if len(ids) > 0 {
		if err := db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&courses).Error; err != nil {
			return nil, apperr.Internal(err)
		}
	}
	out := make(map[uint]course.Course, len(courses))
	for _, c := range courses {
		out[c.ID] = c
	}
	return out, nil
}

func ensureSlugFree(ctx context.Context, db *gorm.DB, slug string, exceptID uint) error {
	var count int64
	q := db.WithContext(ctx).Model(&course.Course{}).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return apperr.Internal(err)
	}
	if count > 0 {
		return apperr.Conflict("slug %q already in use", slug)
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns "Introdução à Física" into "introducao-a-fisica".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		plain = strings.ToLower(title)
	}
	return strings.Trim(nonSlug.ReplaceAllString(plain, "-"), "-")
}
