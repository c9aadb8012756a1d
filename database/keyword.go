/*
Copyright 2024 Leadgrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"

	"github.com/lib/pq"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

// FindMatchingKeywords runs a match expression against the registered keyword
// store and returns every keyword satisfying it, bound to its owning business
// and provider. The pattern is a case-insensitive regular expression; callers
// build it through the token matcher so the fuzziness policy stays in one
// place. An empty result is not an error here.
func (d Datasource) FindMatchingKeywords(ctx context.Context, pattern string) ([]*model.KeywordMatch, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT keyword_id, keyword, business_id, provider_id
		FROM leadgrid.keywords
		WHERE keyword ~* $1`, pattern)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to query keywords", err)
	}
	defer rows.Close()

	var matches []*model.KeywordMatch
	for rows.Next() {
		match := &model.KeywordMatch{}
		if err := rows.Scan(&match.KeywordID, &match.Keyword, &match.BusinessID, &match.ProviderID); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan keyword", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate keywords", err)
	}
	return matches, nil
}

// RegisterKeyword binds a keyword to a (business, provider) pair.
func (d Datasource) RegisterKeyword(ctx context.Context, keyword, businessID, providerID string) (*model.KeywordMatch, error) {
	match := &model.KeywordMatch{
		KeywordID:  GenerateUUIDWithSuffix("kwd"),
		Keyword:    keyword,
		BusinessID: businessID,
		ProviderID: providerID,
	}
	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO leadgrid.keywords(keyword_id,keyword,business_id,provider_id) VALUES ($1,$2,$3,$4)`,
		match.KeywordID, match.Keyword, match.BusinessID, match.ProviderID,
	)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code == "23505" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "Keyword already registered for this business", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to register keyword", err)
	}
	return match, nil
}

// RemoveKeyword deletes a registered keyword.
func (d Datasource) RemoveKeyword(ctx context.Context, keywordID string) error {
	res, err := d.Conn.ExecContext(ctx,
		`DELETE FROM leadgrid.keywords WHERE keyword_id = $1`, keywordID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to remove keyword", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read delete result", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Keyword not found", nil)
	}
	return nil
}
