package persist

const placeProps = `
	"title":       {"type": "string"},
	"uri":         {"type": "string"},
	"description": {"type": "string"},
	"lat":         {"type": "number"},
	"lng":         {"type": "number"},
	"type":        {"type": "string"},
	"distance":    {"type": "string"},
	"isPromoted":  {"type": "boolean"},
	"isVerified":  {"type": "boolean"}`

var (
	recentSchema = mustSchema(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["title", "uri", "viewedAt"],
			"properties": {` + placeProps + `,
				"viewedAt": {"type": "integer"}
			}
		}
	}`)

	favoritesSchema = mustSchema(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["title", "uri"],
			"properties": {` + placeProps + `}
		}
	}`)

	// bidAmount is deliberately unconstrained: it is coerced on decode.
	merchantsSchema = mustSchema(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "businessName", "status"],
			"properties": {
				"id":            {"type": "string"},
				"businessName":  {"type": "string"},
				"category":      {"type": "string"},
				"appliedDate":   {"type": "string"},
				"status":        {"enum": ["pending", "active"]},
				"billingStatus": {"enum": ["paid", "overdue", "trial", ""]}
			}
		}
	}`)

	reviewsSchema = mustSchema(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "rating"],
			"properties": {
				"id":        {"type": "string"},
				"placeUri":  {"type": "string"},
				"author":    {"type": "string"},
				"rating":    {"type": "integer", "minimum": 1, "maximum": 5},
				"comment":   {"type": "string"},
				"createdAt": {"type": "integer"}
			}
		}
	}`)

	reportsSchema = mustSchema(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "reason"],
			"properties": {
				"id":         {"type": "string"},
				"placeUri":   {"type": "string"},
				"placeTitle": {"type": "string"},
				"reason":     {"type": "string"},
				"details":    {"type": "string"},
				"createdAt":  {"type": "integer"},
				"resolved":   {"type": "boolean"}
			}
		}
	}`)

	insightsSchema = mustSchema(`{
		"type": "object",
		"properties": {
			"searches":       {"type": "integer", "minimum": 0},
			"placeViews":     {"type": "integer", "minimum": 0},
			"categoryClicks": {"type": "integer", "minimum": 0},
			"categories": {
				"type": ["object", "null"],
				"additionalProperties": {"type": "integer", "minimum": 0}
			}
		}
	}`)

	languageSchema = mustSchema(`{"type": "string", "minLength": 1}`)

	themeSchema = mustSchema(`{"enum": ["light", "dark"]}`)
)
