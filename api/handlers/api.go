package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/api"
	"github.com/linesmerrill/court-docket-api/config"
	"github.com/linesmerrill/court-docket-api/court"
	"github.com/linesmerrill/court-docket-api/databases"
	"github.com/linesmerrill/court-docket-api/models"
	"github.com/linesmerrill/court-docket-api/store"
)

// App stores the router and store handles, so they can be reused
type App struct {
	Router  *mux.Router
	Config  config.Config
	Service *court.Service
	Metrics *api.Metrics
	// Cases is the case store shared with the hearing sweep
	Cases store.CaseStore

	dbClient databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := api.New(a.Metrics)
	c := Court{Service: a.Service, Metrics: a.Metrics}

	apiCreate := r.PathPrefix("/api").Subrouter()
	apiCreate.Use(api.Middleware)
	if a.Config.RequestTimeout > 0 {
		apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))
	}

	registrar := apiCreate.PathPrefix("/registrar").Subrouter()
	registrar.Use(requireRole(models.RoleRegistrar))
	registrar.HandleFunc("/case-creation", c.CreateCaseHandler).Methods("POST")
	registrar.HandleFunc("/case-updation/{cin}", c.UpdateCaseHandler).Methods("PUT")
	registrar.HandleFunc("/cases/pending", c.PendingCasesHandler).Methods("GET")
	registrar.HandleFunc("/cases/resolved", c.ResolvedCasesHandler).Methods("GET")
	registrar.HandleFunc("/case-query/{cin}", c.CaseQueryHandler).Methods("GET")
	registrar.HandleFunc("/create-lawyer", c.CreateLawyerHandler).Methods("POST")
	registrar.HandleFunc("/create-judge", c.CreateJudgeHandler).Methods("POST")
	registrar.HandleFunc("/delete-lawyer/{userName}", c.DeleteLawyerHandler).Methods("DELETE")
	registrar.HandleFunc("/delete-judge/{userName}", c.DeleteJudgeHandler).Methods("DELETE")
	registrar.HandleFunc("/clear-bill/{username}", c.ClearBillHandler).Methods("POST")
	registrar.HandleFunc("/hearing-dates", c.HearingDatesHandler).Methods("GET")

	judge := apiCreate.PathPrefix("/judge").Subrouter()
	judge.Use(requireRole(models.RoleJudge))
	judge.HandleFunc("/cases/pending", c.PendingCasesHandler).Methods("GET")
	judge.HandleFunc("/cases/resolved", c.ResolvedCasesHandler).Methods("GET")
	judge.HandleFunc("/case-query/{cin}", c.CaseQueryHandler).Methods("GET")

	lawyer := apiCreate.PathPrefix("/lawyer").Subrouter()
	lawyer.Use(requireRole(models.RoleLawyer))
	lawyer.HandleFunc("/cases/resolved", c.ResolvedCasesHandler).Methods("GET")
	lawyer.HandleFunc("/cases/{cin}", c.CaseQueryHandler).Methods("GET")
	lawyer.HandleFunc("/bill", c.BillHandler).Methods("GET")
	lawyer.HandleFunc("/gate", c.GateHandler).Methods("GET")

	return r
}

// Initialize opens the configured store backend and builds the router
func (a *App) Initialize() error {
	if a.Metrics == nil {
		a.Metrics = api.NewMetrics()
	}

	var bills store.BillingStore
	var users store.UserStore
	switch a.Config.StoreBackend {
	case config.BackendMemory:
		mem := store.NewMemory()
		a.Cases, bills, users = mem, mem, mem
		zap.S().Warn("using the in-memory store, data is lost on restart")
	case config.BackendMongo:
		db, err := a.connect()
		if err != nil {
			return err
		}
		a.Cases = databases.NewCaseStore(db)
		bills = databases.NewBillingStore(db)
		users = databases.NewUserStore(db)
	default:
		return fmt.Errorf("unknown store backend %q", a.Config.StoreBackend)
	}

	a.Service = court.New(a.Cases, bills, users, a.Config.Pepper)
	a.Service.Ledger.OnCharge = func(source models.ChargeSource, n int) {
		a.Metrics.Charges.WithLabelValues(string(source)).Add(float64(n))
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) connect() (databases.DatabaseHelper, error) {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With("error", err).Error("failed to create new client")
		return nil, err
	}

	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With("error", err).Error("failed to connect to database")
		return nil, err
	}
	a.dbClient = client

	db := databases.NewDatabase(&a.Config, client)
	if err := databases.EnsureIndexes(ctx, db); err != nil {
		zap.S().With("error", err).Error("failed to ensure indexes")
		return nil, err
	}
	zap.S().Info("court-docket-api has connected to the database")
	return db, nil
}

// Close disconnects from the database when one is open
func (a *App) Close(ctx context.Context) error {
	if a.dbClient == nil {
		return nil
	}
	return a.dbClient.Disconnect(ctx)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// requireRole refuses principals whose role does not own the route prefix
func requireRole(role models.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := api.PrincipalFrom(r.Context()); p.Role != role {
				config.ErrorStatus("route not available for role", http.StatusForbidden, w,
					fmt.Errorf("%s on %s route: %w", p.Role, role, models.ErrForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
