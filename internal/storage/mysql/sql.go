package mysql

// -----------------------------------------------------------------------------
// WRITES
// -----------------------------------------------------------------------------

const insertAccountSQL = `
INSERT INTO accounts (username, email, password_hash, role, phone, date_of_birth)
VALUES (?, ?, ?, ?, ?, ?)
`

const insertDocumentSQL = `
INSERT INTO documents (series, number, issued_on, issued_by)
VALUES (?, ?, ?, ?)
`

const insertGuestSQL = `
INSERT INTO guests (account_id, document_id, fullname, phone_number, date_of_birth, discount)
VALUES (?, ?, ?, ?, ?, ?)
`

const insertCategorySQL = `
INSERT INTO categories (name, price, description) VALUES (?, ?, ?)
`

const insertItemSQL = `
INSERT INTO items (name) VALUES (?)
`

const insertEquipmentSQL = `
INSERT INTO equipment (category_id, item_id) VALUES (?, ?)
`

const insertRoomSQL = `
INSERT INTO rooms (floor, room_count, bed_count, category_id, is_available)
VALUES (?, ?, ?, ?, ?)
`

const insertServiceSQL = `
INSERT INTO services (name, price, description, is_active)
VALUES (?, ?, ?, ?)
`

const insertReservationSQL = `
INSERT INTO reservations (guest_id, room_id, arrival_date, departure_date, price, actually_paid, status)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const insertProvisionSQL = `
INSERT INTO service_provisions (reservation_id, service_id, quantity, provided_on)
VALUES (?, ?, ?, ?)
`

// created_at is set on insert and deliberately absent here.
const updateReservationStatusSQL = `
UPDATE reservations SET status = ? WHERE id = ?
`

const updateGuestDiscountSQL = `
UPDATE guests SET discount = ? WHERE id = ?
`

// -----------------------------------------------------------------------------
// READS
// -----------------------------------------------------------------------------

const accountColumns = `id, username, email, password_hash, role, phone, date_of_birth, created_at`

const getAccountByUsernameSQL = `
SELECT ` + accountColumns + ` FROM accounts WHERE username = ?
`

const getAccountByIDSQL = `
SELECT ` + accountColumns + ` FROM accounts WHERE id = ?
`

const usernameTakenSQL = `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = ?)`
const emailTakenSQL = `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = ?)`
const documentTakenSQL = `SELECT EXISTS(SELECT 1 FROM documents WHERE series = ? AND number = ?)`
const guestPhoneTakenSQL = `SELECT EXISTS(SELECT 1 FROM guests WHERE phone_number = ?)`

const guestColumns = `g.id, g.account_id, g.document_id, g.fullname, g.phone_number, g.date_of_birth, g.discount`

const getGuestByIDSQL = `
SELECT ` + guestColumns + ` FROM guests g WHERE g.id = ?
`

const getGuestByAccountSQL = `
SELECT ` + guestColumns + ` FROM guests g WHERE g.account_id = ?
`

// One row per guest joined with its account and document so the search can
// cover name, phone, email, username and document series/number in one pass.
const listGuestsSQL = `
SELECT ` + guestColumns + `, a.username, a.email, d.series, d.number
FROM guests g
JOIN accounts a ON a.id = g.account_id
JOIN documents d ON d.id = g.document_id
WHERE (? = ''
   OR LOWER(g.fullname) LIKE ?
   OR g.phone_number LIKE ?
   OR LOWER(a.email) LIKE ?
   OR LOWER(a.username) LIKE ?
   OR CAST(d.series AS CHAR) LIKE ?
   OR CAST(d.number AS CHAR) LIKE ?)
ORDER BY `

const getServiceSQL = `
SELECT id, name, price, description, is_active FROM services WHERE id = ?
`

const listServicesSQL = `
SELECT id, name, price, description, is_active
FROM services
WHERE (? = 0 OR is_active = 1)
  AND (? = '' OR LOWER(name) LIKE ? OR LOWER(description) LIKE ?)
ORDER BY id
`

const countServicesSQL = `
SELECT COUNT(*), COALESCE(SUM(is_active), 0) FROM services
`

const listRoomsSQL = `
SELECT id, floor, room_count, bed_count, category_id, is_available
FROM rooms
WHERE (? IS NULL OR bed_count = ?)
  AND (? IS NULL OR category_id = ?)
ORDER BY id
`

const distinctBedCountsSQL = `
SELECT DISTINCT bed_count FROM rooms ORDER BY bed_count
`

const getReservationSQL = `
SELECT id, guest_id, room_id, arrival_date, departure_date, price, actually_paid, status, created_at
FROM reservations WHERE id = ?
`
