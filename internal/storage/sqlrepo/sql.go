package sqlrepo

// Statements use "?" placeholders, which both go-sql-driver/mysql and
// modernc.org/sqlite accept.

const insertReportSQL = `
INSERT INTO reports (id, source, policy, generated_at, body)
VALUES (?, ?, ?, ?, ?)
`

const reviewColumns = `report_id, seq, review_id, app_name, app_category, review_text,
  review_language, rating, review_date, verified_purchase, device_type,
  num_helpful_votes, app_version, user_id, user_age, user_country, user_gender`

const insertReviewsPrefix = "INSERT INTO reviews\n  (" + reviewColumns + ")\nVALUES "

// one placeholder group per review; must match reviewColumns
const reviewPlaceholders = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getReportSQL = `SELECT body FROM reports WHERE id = ?`

const latestReportSQL = `
SELECT body FROM reports
ORDER BY generated_at DESC, id DESC
LIMIT 1
`

const latestReportIDSQL = `
SELECT id FROM reports
ORDER BY generated_at DESC, id DESC
LIMIT 1
`

// Empty app/lang filters match everything.
const listReviewsSQL = `
SELECT review_id, app_name, app_category, review_text, review_language, rating,
  review_date, verified_purchase, device_type, num_helpful_votes, app_version,
  user_id, user_age, user_country, user_gender
FROM reviews
WHERE report_id = ?
  AND (? = '' OR app_name = ?)
  AND (? = '' OR review_language = ?)
ORDER BY seq
LIMIT ?
`
