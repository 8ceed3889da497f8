package database

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, username, first_name, last_name, email, pin_hash)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetUsers = `
		SELECT id, username, first_name, last_name, email, pin_hash, verified, created_at, updated_at
		FROM users
		ORDER BY created_at`

	queryGetUserById = `
		SELECT id, username, first_name, last_name, email, pin_hash, verified, created_at, updated_at
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT id, username, first_name, last_name, email, pin_hash, verified, created_at, updated_at
		FROM users
		WHERE email = ?`

	// Wallet queries
	queryInsertWallet = `
		INSERT INTO wallets (user_id, account_number, balance)
		VALUES (?, ?, ?)`

	queryGetWallet = `
		SELECT user_id, account_number, balance, version, updated_at
		FROM wallets
		WHERE user_id = ?`

	queryGetWalletByAccountNumber = `
		SELECT user_id, account_number, balance, version, updated_at
		FROM wallets
		WHERE account_number = ?`

	queryFindWalletByAddress = `
		SELECT w.user_id, w.account_number, w.balance, w.version, w.updated_at
		FROM wallets w
		JOIN addresses a ON a.user_id = w.user_id
		WHERE a.coin = ? AND a.address = ?`

	queryUpdateWalletBalance = `
		UPDATE wallets
		SET balance = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?`

	// Holding queries
	queryGetHolding = `
		SELECT amount
		FROM holdings
		WHERE user_id = ? AND coin = ?`

	queryGetHoldings = `
		SELECT user_id, coin, amount, updated_at
		FROM holdings
		WHERE user_id = ?
		ORDER BY coin`

	queryInsertHolding = `
		INSERT INTO holdings (user_id, coin, amount)
		VALUES (?, ?, ?)`

	queryUpdateHolding = `
		UPDATE holdings
		SET amount = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND coin = ?`

	queryDeleteHolding = `
		DELETE FROM holdings
		WHERE user_id = ? AND coin = ?`

	// Address queries
	queryInsertAddress = `
		INSERT INTO addresses (user_id, coin, address)
		VALUES (?, ?, ?)`

	queryGetAddresses = `
		SELECT user_id, coin, address, created_at
		FROM addresses
		WHERE user_id = ?
		ORDER BY coin`

	// History queries
	queryInsertHistory = `
		INSERT INTO history (id, user_id, status, message, read_flag, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
		RETURNING id, user_id, status, message, read_flag, created_at`

	queryListHistory = `
		SELECT id, user_id, status, message, read_flag, created_at
		FROM history
		WHERE user_id = ?
		ORDER BY created_at, id`

	queryMarkHistoryRead = `
		UPDATE history
		SET read_flag = 1
		WHERE user_id = ? AND read_flag = 0`

	// Notification queries
	queryInsertNotification = `
		INSERT INTO notifications (id, user_id, status, message, created_at)
		VALUES (?, ?, 'unread', ?, ?)
		RETURNING id, user_id, status, message, created_at`

	queryListNotifications = `
		SELECT id, user_id, status, message, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at, id`

	queryMarkNotificationsRead = `
		UPDATE notifications
		SET status = 'read'
		WHERE user_id = ? AND status = 'unread'`
)
