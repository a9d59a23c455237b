package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Root returns the service welcome message at "/".
func Root(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to Health Microservice API"})
}

// Health reports service liveness for load balancers and monitoring
// systems. It returns the running version alongside a static status.
func Health(version string) echo.HandlerFunc {
    return func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{"status": "healthy", "version": version})
    }
}
