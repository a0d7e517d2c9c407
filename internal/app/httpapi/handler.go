// Package httpapi exposes the storefront's HTTP surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	app "github.com/ethanscookies/storefront/internal/app"
	"github.com/ethanscookies/storefront/internal/app/domain/order"
	"github.com/ethanscookies/storefront/internal/app/metrics"
	"github.com/ethanscookies/storefront/internal/app/services/accounts"
	cataloguesvc "github.com/ethanscookies/storefront/internal/app/services/catalogue"
	feedbacksvc "github.com/ethanscookies/storefront/internal/app/services/feedback"
	"github.com/ethanscookies/storefront/internal/app/services/orders"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "sessionid"

const storeUnavailableMsg = "Can't reach database right now"

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app   *app.Application
	audit *AuditLog
}

// NewHandler returns a router exposing the storefront REST API.
func NewHandler(application *app.Application, audit *AuditLog) http.Handler {
	h := &handler{app: application, audit: audit}

	r := mux.NewRouter()
	r.HandleFunc("/catalogue", h.catalogue).Methods(http.MethodGet)
	r.HandleFunc("/catalogue/{batter}", h.catalogueByBatter).Methods(http.MethodGet)
	r.HandleFunc("/item/{name}", h.item).Methods(http.MethodGet)
	r.HandleFunc("/yourorders", h.yourOrders).Methods(http.MethodGet)
	r.HandleFunc("/order", h.placeOrder).Methods(http.MethodPost)
	r.HandleFunc("/contact", h.contact).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	r.HandleFunc("/signup", h.signup).Methods(http.MethodPost)
	r.HandleFunc("/resumesession", h.resumeSession).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/admin/audit", h.auditEntries).Methods(http.MethodGet)
	return r
}

func (h *handler) catalogue(w http.ResponseWriter, r *http.Request) {
	mapping, err := h.app.Catalogue.List(r.Context())
	if err != nil {
		writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}

func (h *handler) catalogueByBatter(w http.ResponseWriter, r *http.Request) {
	mapping, err := h.app.Catalogue.ListByBatter(r.Context(), mux.Vars(r)["batter"])
	if err != nil {
		if errors.Is(err, cataloguesvc.ErrInvalidArgument) {
			writeText(w, http.StatusBadRequest, "Please indicate a batter type")
			return
		}
		writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}

func (h *handler) item(w http.ResponseWriter, r *http.Request) {
	detail, err := h.app.Catalogue.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		switch {
		case errors.Is(err, cataloguesvc.ErrInvalidArgument):
			writeText(w, http.StatusBadRequest, "No item name specified")
		case errors.Is(err, cataloguesvc.ErrNotFound):
			writeText(w, http.StatusNotFound, "No item with that name")
		default:
			writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *handler) yourOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.app.Orders.ListForUser(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		if errors.Is(err, orders.ErrInvalidArgument) {
			writeText(w, http.StatusBadRequest, "Please enter a username")
			return
		}
		writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	params, err := bodyParams(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Please input all required parameters")
		return
	}

	var cart order.Cart
	if raw := params["cart"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &cart); err != nil {
			writeText(w, http.StatusBadRequest, "Please input all required parameters")
			return
		}
	}

	_, err = h.app.Orders.Place(r.Context(), order.Submission{
		Phone:    params["phone"],
		Email:    params["email"],
		Username: params["user"],
		Cart:     cart,
	})
	if err != nil {
		if errors.Is(err, orders.ErrInvalidArgument) {
			writeText(w, http.StatusBadRequest, "Please input all required parameters")
			return
		}
		writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		return
	}
	writeText(w, http.StatusOK, "Your Order Has Been Placed!")
}

func (h *handler) contact(w http.ResponseWriter, r *http.Request) {
	params, err := bodyParams(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "No question specified")
		return
	}

	_, err = h.app.Feedback.Submit(r.Context(), params["question"], params["user"])
	if err != nil {
		if errors.Is(err, feedbacksvc.ErrInvalidArgument) {
			writeText(w, http.StatusBadRequest, "No question specified")
			return
		}
		writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		return
	}
	writeText(w, http.StatusOK, "Your Feedback Has Been Received!")
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	params, err := bodyParams(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid parameters, please try again with different ones")
		return
	}

	token, err := h.app.Accounts.Login(r.Context(), params["username"], params["password"])
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			writeText(w, http.StatusBadRequest, "Invalid parameters, please try again with different ones")
			return
		}
		writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:    SessionCookie,
		Value:   token,
		Path:    "/",
		Expires: time.Now().Add(accounts.SessionTTL),
	})
	writeText(w, http.StatusOK, "Successful Login!")
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	params, err := bodyParams(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid session id. Try logging in first!")
		return
	}

	if err := h.app.Accounts.Logout(r.Context(), params[SessionCookie]); err != nil {
		if errors.Is(err, accounts.ErrInvalidToken) {
			writeText(w, http.StatusBadRequest, "Invalid session id. Try logging in first!")
			return
		}
		writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:    SessionCookie,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	writeText(w, http.StatusOK, "Successful logout!")
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	params, err := bodyParams(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid parameters. Need a username, email, and password")
		return
	}

	err = h.app.Accounts.Signup(r.Context(), params["username"], params["email"], params["password"])
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrUsernameTaken):
			writeText(w, http.StatusBadRequest, "Username taken, try another!")
		case errors.Is(err, accounts.ErrInvalidArgument):
			writeText(w, http.StatusBadRequest, "Invalid parameters. Need a username, email, and password")
		default:
			writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		}
		return
	}
	writeText(w, http.StatusOK, "Successful Signup!")
}

func (h *handler) resumeSession(w http.ResponseWriter, r *http.Request) {
	params, err := bodyParams(r)
	if err != nil || params[SessionCookie] == "" {
		writeText(w, http.StatusBadRequest, "Please input a sessionid")
		return
	}

	username, err := h.app.Accounts.Resume(r.Context(), params[SessionCookie])
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidToken) {
			writeText(w, http.StatusBadRequest, "Invalid sessionid")
			return
		}
		writeText(w, http.StatusInternalServerError, storeUnavailableMsg)
		return
	}
	writeText(w, http.StatusOK, username)
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (h *handler) auditEntries(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeJSON(w, http.StatusOK, []AuditEntry{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

// bodyParams flattens a form-encoded, multipart or JSON request body into a
// string map. JSON values that are not strings keep their raw encoding, so a
// cart submitted as an object round-trips through the same code path as a
// cart submitted as a JSON text field.
func bodyParams(r *http.Request) (map[string]string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		defer r.Body.Close()
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				out[k] = s
			} else {
				out[k] = string(v)
			}
		}
		return out, nil
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	out := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		out[k] = r.PostFormValue(k)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
