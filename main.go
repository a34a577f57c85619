package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"cloud.google.com/go/firestore"
	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mentorLinkAPI/handlers"
	"mentorLinkAPI/internal/feed"
	"mentorLinkAPI/internal/notification"
	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/middleware"
	"mentorLinkAPI/services"
)

var (
	firestoreClient   *firestore.Client
	userService       *services.UserService
	connectionService *services.ConnectionService
	groupService      *services.GroupService
	chatService       *services.ChatService
	dispatcher        *services.NotificationDispatcher
	messageIngest     *services.MessageIngest
	messageFeed       *feed.MessageFeed
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app, err := notification.NewFirebaseApp(ctx, "./serviceAccountKey.json")
	if err != nil {
		log.Fatal("Failed to initialize Firebase app:", err)
	}

	firestoreClient, err = app.Firestore(ctx)
	if err != nil {
		log.Fatal("Failed to create Firestore client:", err)
	}
	log.Println("Successfully connected to Firestore")

	docStore := store.NewFirestoreStore(firestoreClient)

	userService = services.NewUserService(docStore)
	connectionService = services.NewConnectionService(docStore, userService)
	chatService = services.NewChatService(docStore)
	groupService = services.NewGroupService(docStore, userService, chatService)

	var pushProvider services.PushProvider
	if fcm, err := notification.NewFCMService(ctx, app); err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		pushProvider = fcm
		log.Println("FCM Push Provider initialized successfully")
	}

	dispatcher = services.NewNotificationDispatcher(pushProvider, docStore)
	messageIngest = services.NewMessageIngest(docStore, userService, dispatcher)
	messageFeed = feed.NewMessageFeed(firestoreClient, messageIngest)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing Firestore client...")
		firestoreClient.Close()
	}()

	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	go func() {
		if err := messageFeed.Run(feedCtx); err != nil {
			log.Printf("Message feed stopped with error: %v", err)
		}
	}()

	connectionHandler := handlers.NewConnectionHandler(connectionService)
	groupHandler := handlers.NewGroupHandler(groupService)
	chatHandler := handlers.NewChatHandler(chatService)
	userHandler := handlers.NewUserHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "mentorLink-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/connections/request", connectionHandler.SendRequest).Methods("POST")
	protected.HandleFunc("/connections/accept", connectionHandler.AcceptRequest).Methods("POST")
	protected.HandleFunc("/connections/decline", connectionHandler.DeclineRequest).Methods("POST")
	protected.HandleFunc("/connections/incoming", connectionHandler.FetchIncoming).Methods("GET")
	protected.HandleFunc("/connections/outgoing", connectionHandler.FetchOutgoing).Methods("GET")
	protected.HandleFunc("/connections", connectionHandler.FetchConnections).Methods("GET")

	protected.HandleFunc("/groups", groupHandler.CreateGroupChat).Methods("POST")
	protected.HandleFunc("/groups/participants", groupHandler.ManageGroupParticipants).Methods("POST")
	protected.HandleFunc("/groups/{groupId}", groupHandler.DeleteGroupChat).Methods("DELETE")
	protected.HandleFunc("/groups/{groupId}/members", groupHandler.AddUserToGroup).Methods("POST")

	protected.HandleFunc("/chats/initialize", chatHandler.InitializeChat).Methods("POST")

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", userHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	stopFeed()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
