// Package auth provides authentication and authorization for the API.
//
// Clients obtain an HS256 JWT from /api/auth/register or /api/auth/login and
// send it as "Authorization: Bearer <token>". The token subject is the user
// id; every request reloads the user, so deleting an account revokes its
// tokens immediately.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<hex>            # Auto-generated if empty
//	AUTH_JWT_ISSUER=bookshelf
//	AUTH_TOKEN_EXPIRY=24h
//	AUTH_BCRYPT_COST=12
//	AUTH_MAX_LOGIN_ATTEMPTS=5        # Failures within the window before lockout
//	AUTH_RATE_LIMIT_WINDOW=15m
//	AUTH_LOCKOUT_DURATION=30m
//
// Failed logins for an existing account lock that account (stored on the
// user row). Failed logins for unknown names throttle the client address in
// memory. Both follow one LockoutPolicy and answer 429 with Retry-After.
//
// # Usage
//
//	tokens := auth.NewJWTManager(secret, cfg.Auth.JWTIssuer, cfg.Auth.TokenExpiry)
//	authService := auth.NewService(users.NewRepository(db), tokens, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService)
//	router.Use(authMiddleware.Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)
package auth
