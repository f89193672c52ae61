package repository

import (
	"strings"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/models"
)

// tagMatch is true when any tag of the delimited category column matches the
// bound pattern
const tagMatch = `EXISTS (SELECT 1 FROM unnest(string_to_array(category, '` +
	models.CategoryDelimiter + `')) AS tag WHERE tag ILIKE ?)`

// buildRestaurantFilter composes the WHERE clause for filter using ?
// placeholders; callers Rebind before executing. Criteria are ANDed together.
func buildRestaurantFilter(filter models.RestaurantFilter) (string, []interface{}, error) {
	var conds []string
	var args []interface{}

	if category := strings.TrimSpace(filter.Category); category != "" {
		conds = append(conds, tagMatch)
		args = append(args, containsPattern(category))
	}

	if zip := strings.TrimSpace(filter.ZipCode); zip != "" {
		conds = append(conds, "zip_code = ?")
		args = append(args, zip)
	}

	if filter.Price != nil {
		if err := filter.Price.Validate(); err != nil {
			return "", nil, err
		}
		conds = append(conds, "min_price >= ? AND max_price <= ?")
		args = append(args, filter.Price.Min, filter.Price.Max)
	}

	if filter.AdminID != nil {
		conds = append(conds, "admin_id = ?")
		args = append(args, *filter.AdminID)
	}

	if filter.Search != nil {
		search, searchArgs, err := buildSearch(*filter.Search)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, search)
		args = append(args, searchArgs...)
	}

	return strings.Join(conds, " AND "), args, nil
}

// buildSearch ORs a substring match for each supplied term
func buildSearch(search models.RestaurantSearch) (string, []interface{}, error) {
	if search.IsEmpty() {
		return "", nil, apperr.Validation(apperr.CodeMissingField, "search",
			"at least one of name, address or category is required")
	}

	var terms []string
	var args []interface{}

	if name := strings.TrimSpace(search.Name); name != "" {
		terms = append(terms, "name ILIKE ?")
		args = append(args, containsPattern(name))
	}
	if address := strings.TrimSpace(search.Address); address != "" {
		terms = append(terms, "address ILIKE ?")
		args = append(args, containsPattern(address))
	}
	if category := strings.TrimSpace(search.Category); category != "" {
		terms = append(terms, tagMatch)
		args = append(args, containsPattern(category))
	}

	return "(" + strings.Join(terms, " OR ") + ")", args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term anywhere, with LIKE
// wildcards in term taken literally
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
