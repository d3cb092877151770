package api

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(r router, cookies cookiePolicy) *routeHandlers {
	handlers := &routeHandlers{
		authHandler:     newAuthHandler(r.authService, cookies),
		blogPostHandler: newBlogPostHandler(r.blogService, r.storage),
		userHandler:     newUserHandler(r.authService),
	}
	if r.speech != nil {
		tts := newTTSHandler(r.speech)
		handlers.ttsHandler = &tts
	}
	return handlers
}
