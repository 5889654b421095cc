package patterns

// =============================================================================
// PATTERN DEFINITIONS BY CATEGORY
// All patterns are registered here and compiled once at package init.
// This provides a single source of truth for scam and intelligence patterns.
// =============================================================================

// --- SCAM SIGNAL PATTERNS (DETECTION SIDE) ---
func (r *Registry) registerScamSignalPatterns() {
	// Urgency indicators
	r.register("urgency_pressure", `(?i)\b(urgent|immediately|right now|asap|today only|limited time|act now|don't wait|hurry)\b`, CategoryUrgency, "Time pressure phrasing")
	r.register("urgency_deadline", `(?i)\b(expiring|expires soon|last chance|final notice|deadline|time is running out)\b`, CategoryUrgency, "Deadline phrasing")

	// Financial fraud indicators
	r.register("financial_banking", `(?i)\b(bank account|account number|ifsc code|transfer|wire|deposit|payment|money|cash|rupees|rs\.|₹)\b`, CategoryFinancial, "Banking and payment terms")
	r.register("financial_investment", `(?i)\b(investment|profit|return|double|triple|guaranteed|risk-free|scheme)\b`, CategoryFinancial, "Too-good investment terms")
	r.register("financial_fees", `(?i)\b(advance fee|registration fee|processing fee|security deposit)\b`, CategoryFinancial, "Advance-fee phrasing")

	// Phishing indicators
	r.register("phishing_action", `(?i)\b(click here|verify|confirm|update|login|sign in|account suspended|security alert)\b`, CategoryPhishing, "Credential-bait call to action")
	r.register("phishing_credentials", `(?i)\b(password|otp|pin|cvv|card number|credit card|debit card)\b`, CategoryPhishing, "Credential and card terms")
	r.register("phishing_url", `(?i)https?://[^\s]+(verify|secure|login|account|bank|update)[^\s]*`, CategoryPhishing, "URL with phishing keywords")

	// Lottery/prize indicators
	r.register("lottery_win", `(?i)\b(lottery|prize|winner|won|jackpot|lucky draw|reward|gift)\b`, CategoryLottery, "Prize and lottery terms")
	r.register("lottery_claim", `(?i)\b(claim|collect|receive your|congratulations|you have been selected)\b`, CategoryLottery, "Prize-claim phrasing")

	// Tech support indicators
	r.register("techsupport_threat", `(?i)\b(virus|malware|hack|security breach|compromised|suspicious activity)\b`, CategoryTechSupport, "Fake security threat terms")
	r.register("techsupport_remote", `(?i)\b(remote access|teamviewer|anydesk|support|technician|microsoft|apple)\b`, CategoryTechSupport, "Remote-access and vendor terms")

	// Romance scam indicators
	r.register("romance_emergency", `(?i)\b(money transfer|help me|emergency|hospital|sick|family problem)\b`, CategoryRomance, "Emotional emergency phrasing")
	r.register("romance_payment", `(?i)\b(gift card|bitcoin|crypto|western union|moneygram)\b`, CategoryRomance, "Hard-to-trace payment rails")
}

// --- INTELLIGENCE PATTERNS (EXTRACTION SIDE) ---
func (r *Registry) registerIntelligencePatterns() {
	// Bank account numbers. Raw digit runs are filtered by the 9-18 digit
	// length bounds after stripping, so this deliberately over-matches.
	r.register("account_digits", `\b\d{9,18}\b`, CategoryBankAccount, "Bare account-length digit run")
	r.register("account_labeled", `(?i)\b(account|acc|a/c)\s*(no|number|#)?\s*:?\s*(\d{9,18})\b`, CategoryBankAccount, "Labeled account number")
	r.register("account_trailing", `(?i)\b(\d{9,18})\s*(is my|is\s)\s*(account|acc|a/c)\s*(no|number|#)?\b`, CategoryBankAccount, "Account number with trailing label")

	// IFSC routing codes (4 letters, 0, 6 alphanumerics)
	r.register("ifsc_standard", `\b[A-Z]{4}0[A-Z0-9]{6}\b`, CategoryRoutingCode, "Standard IFSC format")
	r.register("ifsc_labeled", `(?i)\b(ifsc|ifsc code)\s*:?\s*([A-Za-z]{4}0[A-Za-z0-9]{6})\b`, CategoryRoutingCode, "Labeled IFSC code")

	// UPI-style payment identifiers
	r.register("upi_handle", `(?i)\b[\w.-]+@(paytm|gpay|phonepe|ybl|axis|icici|hdfc|sbi|kotak|upi|oksbi)\b`, CategoryPaymentID, "UPI virtual payment address")

	// Phone numbers (India-centric, matches the traffic this engine sees)
	// The word boundary sits after the optional country code: \b cannot
	// match between a space and '+', so a leading \b would silently drop
	// the +91 prefix from every match.
	r.register("phone_mobile", `(\+91[-\s]?)?\b[6-9]\d{9}\b`, CategoryPhone, "Indian mobile number")
	r.register("phone_grouped", `(\+91[-\s]?)?\b\d{4}[-\s]?\d{3}[-\s]?\d{3}\b`, CategoryPhone, "Grouped 10-digit number")
	r.register("phone_labeled", `(?i)\b(phone|mobile|contact|call|whatsapp)\s*:?\s*(\+?\d[\d\s\-\(\)]{9,15})\b`, CategoryPhone, "Labeled phone number")

	// URLs, including bare domains and shorteners
	r.register("url_scheme", `https?://[^\s<>"']+`, CategoryURL, "Absolute URL")
	r.register("url_bare_domain", `(www\.)?[a-zA-Z0-9-]+\.[a-zA-Z]{2,}[^\s<>"']*`, CategoryURL, "Bare domain without scheme")
	r.register("url_shortener", `bit\.ly/[^\s<>"']+`, CategoryURL, "bit.ly short URL")
}
