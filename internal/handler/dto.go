package handler

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type startSessionRequest struct {
	ScenarioID string `json:"scenario_id" binding:"required"`
}

type submitActionRequest struct {
	Action string `json:"action"`
}

type scenarioResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type meResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Tokens   int    `json:"tokens"`
}

type startSessionResponse struct {
	SessionID string `json:"session_id"`
	Turn      int    `json:"turn"`
	Narrative string `json:"narrative"`
}

type currentSessionResponse struct {
	SessionID  string `json:"session_id"`
	ScenarioID string `json:"scenario_id"`
	Turn       int    `json:"turn"`
	Transcript string `json:"transcript"`
}

type turnResponse struct {
	Narrative string `json:"narrative"`
	Turn      int    `json:"turn"`
	Tokens    int    `json:"tokens"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}
