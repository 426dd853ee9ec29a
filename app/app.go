package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/trace"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

type NetlifyFunction func(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type, Authorization",
}

// CorsMiddleware answers OPTIONS preflights itself, rejects methods outside
// allowMethods with a 405, and stamps CORS headers on every response that
// passes through it.
func CorsMiddleware(function NetlifyFunction, allowMethods ...string) NetlifyFunction {
	return func(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
		withCors := func(response *events.APIGatewayProxyResponse, err error) (*events.APIGatewayProxyResponse, error) {
			if err != nil || response == nil {
				return response, err
			}
			if response.Headers == nil {
				response.Headers = map[string]string{}
			}
			for key, val := range corsHeaders {
				response.Headers[key] = val
			}
			response.Headers["Access-Control-Allow-Methods"] = strings.Join(append(slices.Clone(allowMethods), "OPTIONS"), ", ")
			return response, nil
		}

		if request.HTTPMethod == "OPTIONS" {
			return withCors(NetlifyResponse(200, ""))
		}
		if len(allowMethods) > 0 && !slices.Contains(allowMethods, request.HTTPMethod) {
			return withCors(NetlifyJsonResponse(405, map[string]any{"error": "Method not allowed"}))
		}

		return withCors(function(ctx, request))
	}
}

// CronAuthorized reports whether a request may trigger a scheduled task:
// either the platform marked it as a cron invocation, or the caller presented
// the shared bearer secret. An empty secret never authorizes manual calls.
func CronAuthorized(request events.APIGatewayProxyRequest, secret string) bool {
	if request.Headers["x-netlify-cron"] == "1" {
		return true
	}
	return secret != "" && request.Headers["authorization"] == fmt.Sprintf("Bearer %s", secret)
}

func IsCronRequest(request events.APIGatewayProxyRequest) bool {
	return request.Headers["x-netlify-cron"] == "1"
}

func CheckEnvMiddleware(function NetlifyFunction) NetlifyFunction {
	return func(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
		currentEnv := os.Getenv("ENV")
		disabledEnvs := os.Getenv("ENV_DISABLE")
		if currentEnv == "" || (disabledEnvs != "" && slices.Contains(strings.Split(disabledEnvs, ","), currentEnv)) {
			return &events.APIGatewayProxyResponse{
				StatusCode: 404,
				Body:       "Not Found",
			}, nil
		}

		return function(ctx, request)
	}
}

func RecoverMiddleware(function NetlifyFunction) NetlifyFunction {
	return func(ctx context.Context, request events.APIGatewayProxyRequest) (response *events.APIGatewayProxyResponse, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Recovered from panic in handler: %v", r)
				response, err = NetlifyJsonResponse(500, map[string]any{
					"error":   "Internal server error",
					"message": fmt.Sprintf("%v", r),
				})
			}
		}()

		return function(ctx, request)
	}
}

func ProfilingMiddleware(function NetlifyFunction, filename string) NetlifyFunction {
	return func(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
		if os.Getenv("PROFILING") == "1" && os.Getenv("ENV") == "LOCAL" {
			path := os.Getenv("PROFILING_PATH")
			if path != "" {
				if string(path[len(path)-1]) != "/" {
					path += "/"
				}
				filename = path + filename
			}
			filename += ".out"
			f, err := os.Create(filename)
			if err != nil {
				log.Printf("!!! Could not create trace profile for %v: %v", filename, err)
			} else {
				defer f.Close()
				if err := trace.Start(f); err != nil {
					f.Close()
					log.Printf("!!! Could not start trace profile for %v: %v", filename, err)
				} else {
					defer trace.Stop()
					fmt.Printf("!!! Tracing on for: %v\n", filename)
				}
			}
		}

		return function(ctx, request)
	}
}

func TimeoutMiddleware(function NetlifyFunction) NetlifyFunction {
	return func(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
		timeoutCtx, cancel := context.WithTimeout(ctx, 9500*time.Millisecond)
		defer cancel()

		type result struct {
			Response *events.APIGatewayProxyResponse
			Error    error
		}

		resultChan := make(chan result, 1)

		go func() {
			response, err := function(timeoutCtx, request)
			resultChan <- result{
				Response: response,
				Error:    err,
			}
		}()

		select {
		case res := <-resultChan:
			return res.Response, res.Error
		case <-timeoutCtx.Done():
			return NetlifyResponse(int(http.StatusGatewayTimeout), "Request timed out")
		}
	}
}

func NetlifyResponseWithHeaders(statusCode int, body string, headers map[string]string) (*events.APIGatewayProxyResponse, error) {
	return &events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       body,
		Headers:    headers,
	}, nil
}

func NetlifyResponse(statusCode int, body string) (*events.APIGatewayProxyResponse, error) {
	return NetlifyResponseWithHeaders(statusCode, body, nil)
}

func NetlifyJsonResponse(statusCode int, data any) (*events.APIGatewayProxyResponse, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshalling Netlify JSON response: %v", err)
		return NetlifyResponse(500, "Internal Error")
	}
	return NetlifyResponseWithHeaders(statusCode, string(jsonData), map[string]string{
		"Content-Type": "application/json",
	})
}

func logBodyAndError(body any, err error) {
	if err != nil {
		log.Printf("%v\n>>> %v", body, err)
	} else {
		log.Println(body)
	}
}

func NetlifyLogAndResponse(statusCode int, body string, err error) (*events.APIGatewayProxyResponse, error) {
	logBodyAndError(body, err)
	return NetlifyResponse(statusCode, body)
}

func NetlifyLogAndJsonResponse(statusCode int, body any, err error) (*events.APIGatewayProxyResponse, error) {
	logBodyAndError(body, err)
	return NetlifyJsonResponse(statusCode, body)
}
