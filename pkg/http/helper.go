package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"billboards/pkg/config"
	apperrors "billboards/pkg/errors"
)

const OwnerIDHeader = "X-Owner-ID"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// DecodeBody decodes a JSON request body, rejecting unknown fields.
func DecodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.InvalidInput("invalid JSON body: " + err.Error())
	}
	return nil
}

// OwnerID returns the authenticated owner identity forwarded by the gateway.
func OwnerID(r *http.Request) (string, error) {
	owner := strings.TrimSpace(r.Header.Get(OwnerIDHeader))
	if owner == "" {
		return "", apperrors.Unauthorized("missing " + OwnerIDHeader + " header")
	}
	return owner, nil
}

// SplitList parses a comma separated query parameter, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

const SessionIDHeader = "X-Session-ID"

// SessionID returns the anonymous client session that owns a cart.
func SessionID(r *http.Request) (string, error) {
	session := strings.TrimSpace(r.Header.Get(SessionIDHeader))
	if session == "" {
		return "", apperrors.InvalidInput("missing " + SessionIDHeader + " header")
	}
	return session, nil
}
