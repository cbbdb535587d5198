package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/gamstore/storefront/internal/domain"
	"github.com/tidwall/gjson"
)

// decodeEnvelope unwraps a {success, data, pagination?, message?} body
func decodeEnvelope[T any](body []byte) (T, *domain.Pagination, error) {
	var zero T

	if !gjson.ValidBytes(body) {
		return zero, nil, fmt.Errorf("%w: invalid JSON", domain.ErrMalformedResponse)
	}

	success := gjson.GetBytes(body, "success")
	if !success.Exists() {
		return zero, nil, fmt.Errorf("%w: missing success flag", domain.ErrMalformedResponse)
	}
	if !success.Bool() {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = "no message"
		}
		return zero, nil, fmt.Errorf("%w: %s", domain.ErrUnsuccessfulResponse, msg)
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return zero, nil, fmt.Errorf("%w: missing data", domain.ErrMalformedResponse)
	}

	var out T
	if err := json.Unmarshal([]byte(data.Raw), &out); err != nil {
		return zero, nil, fmt.Errorf("%w: data: %v", domain.ErrMalformedResponse, err)
	}

	var pagination *domain.Pagination
	if p := gjson.GetBytes(body, "pagination"); p.Exists() && p.IsObject() {
		pagination = &domain.Pagination{}
		if err := json.Unmarshal([]byte(p.Raw), pagination); err != nil {
			return zero, nil, fmt.Errorf("%w: pagination: %v", domain.ErrMalformedResponse, err)
		}
	}

	return out, pagination, nil
}

// decodeProductPage reads a product listing; pagination is required
func decodeProductPage(body []byte) (*domain.ProductPage, error) {
	products, pagination, err := decodeEnvelope[[]domain.Product](body)
	if err != nil {
		return nil, err
	}
	if pagination == nil {
		return nil, fmt.Errorf("%w: missing pagination", domain.ErrMalformedResponse)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &domain.ProductPage{Products: products, Pagination: *pagination}, nil
}

// decodeUserProfile maps the {user: {...}} profile body onto domain.UserProfile.
// The backend emits Mongo-style "_id" and sometimes "name" instead of "fullName".
func decodeUserProfile(body []byte) (*domain.UserProfile, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrMalformedResponse)
	}

	if success := gjson.GetBytes(body, "success"); success.Exists() && !success.Bool() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsuccessfulResponse, gjson.GetBytes(body, "message").String())
	}

	user := gjson.GetBytes(body, "user")
	if !user.IsObject() {
		return nil, fmt.Errorf("%w: missing user", domain.ErrMalformedResponse)
	}

	return &domain.UserProfile{
		ID:         firstString(user, "id", "_id"),
		FullName:   firstString(user, "fullName", "name"),
		Phone:      user.Get("phone").String(),
		Email:      user.Get("email").String(),
		IsVerified: user.Get("isVerified").Bool(),
		Role:       user.Get("role").String(),
	}, nil
}

func firstString(obj gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := obj.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
