package middlewares

import "time"

// PromptRateLimiterConfig for prompt posting; every post can trigger an
// inference call and a settlement, so the window is tight.
func PromptRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Scope:             "prompt",
		RequestsPerWindow: 30,               // 30 prompts
		Window:            time.Minute,      // per minute
		BlockDuration:     time.Minute * 10, // block for 10 minutes
	}
}

// LenientRateLimiterConfig for read-heavy endpoints like log polling
func LenientRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Scope:             "api",
		RequestsPerWindow: 200,             // 200 requests
		Window:            time.Minute,     // per minute
		BlockDuration:     time.Minute * 2, // block for 2 minutes
	}
}
