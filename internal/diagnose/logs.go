package diagnose

import "strings"

// logPatternRule pairs a set of case-insensitive substrings with remediation
// advice. Rules are tried in order; first match wins.
type logPatternRule struct {
	substrings []string
	advice     string
}

var logPatternRules = []logPatternRule{
	{
		substrings: []string{"entrypoint requires the handler name"},
		advice: "Troubleshooting suggestion:\n" +
			"- The error indicates that your Lambda container's entrypoint is misconfigured.\n" +
			"- Ensure the container command specifies the handler correctly, e.g. `CMD [\"handler.lambda_handler\"]`.\n" +
			"- If you are using a Dockerfile, check the last line. Example:\n" +
			"  ENTRYPOINT [\"/usr/bin/aws-lambda-rie\", \"python3\", \"-m\", \"awslambdaric\", \"lambda_function.lambda_handler\"]\n" +
			"- If using `docker run`, ensure you pass the handler name after the image name.\n" +
			"- Review your function handler in the AWS Lambda or Docker configuration.",
	},
	{
		substrings: []string{
			"address already in use",
			"failed to bind",
			"port is already allocated",
			"failed programming external connectivity",
		},
		advice: "Troubleshooting suggestion:\n" +
			"- A container failed to start because a port (likely 80 or 443) is already in use.\n" +
			"- Run `sudo lsof -i :80` or `sudo lsof -i :443` to find which service is using it.\n" +
			"- If you find a local service like Apache or Nginx, stop it using:\n" +
			"    sudo systemctl stop apache2\n" +
			"    sudo systemctl stop nginx\n" +
			"- You can also check active containers with `docker ps`.\n" +
			"- If another container (like nginx-proxy) is using the port, stop it first: `docker stop <container_id>`.\n" +
			"- Alternatively, modify your port mapping in docker-compose.yml, for example change `80:80` to `8080:80`.\n" +
			"- Then restart your container with `docker-compose up -d`.",
	},
}

// AnalyzeLogs maps raw log text to a remediation suggestion. It is a pure
// function of its input: identical text always yields identical advice.
func AnalyzeLogs(logText string) string {
	if strings.TrimSpace(logText) == "" {
		return "No logs available for analysis."
	}

	lower := strings.ToLower(logText)
	for _, rule := range logPatternRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.advice
			}
		}
	}

	return "No specific troubleshooting found. Review logs for details or rerun with `--verbose`."
}
