package assistant

// Static guide and hint texts. These are opaque string resources rendered
// verbatim; the routing logic never inspects them.

// dnsGuide handles DNS resolution issues like "Temporary failure resolving"
// during image builds or pulls.
const dnsGuide = `Fix for "Temporary failure resolving" errors

This issue usually occurs when the engine cannot resolve domain names (DNS
failure) while building images, pulling images, or installing packages inside
containers.

Follow these steps to fix it:

Step 1: Edit the daemon configuration
Open the daemon configuration file (create it if it does not exist):

  sudo vi /etc/docker/daemon.json

and add:

  {
    "dns": ["8.8.8.8", "8.8.4.4"]
  }

Step 2: Restart the engine service

  sudo systemctl restart docker

Alternatively, connecting to a different network (such as another Wi-Fi or a
mobile hotspot) can also resolve this issue.

If you want me to apply this automatically, say: fix dns issue`

// troubleshootingGuide is the general inspection reference returned for a
// bare "troubleshooting" question.
const troubleshootingGuide = `Container Troubleshooting Guide

1. Inspect containers:
   docker ps -a  # list all containers with status

2. Access a container shell:
   docker exec -it <container_name_or_id> bash

3. Stop and remove all containers (if needed):
   docker stop $(docker ps -a -q)
   docker rm $(docker ps -a -q)

4. Inspect container filesystem or logs:
   docker exec -it <container_name_or_id> ls -l /app
   docker logs <container_name_or_id>

5. Clean up the engine host:
   docker system prune -a -v

6. If a container is not starting:
   - Check logs with docker logs <container_name_or_id>
   - Check for port conflicts using sudo lsof -i :<port>
   - Ensure volumes and file permissions are correct
   - Try restarting the container manually
   - Remove the container and pull a fresh image if issues persist

7. Networking:
   docker network ls
   docker network inspect <network>
   docker network connect <net> <ctr>
   docker exec -it <ctr> ping 8.8.8.8
   sudo systemctl restart docker

8. Volumes and storage:
   docker volume ls
   docker volume inspect <volume_name>
   docker volume rm <volume_name>
   docker run -v /host/path:/container/path <image_name>

9. Compose:
   docker-compose ps
   docker-compose logs -f
   docker-compose down && docker-compose up -d
   docker-compose config

Follow these steps to resolve most container issues effectively.`

// capabilityMenu is the last-resort response listing example phrasings.
const capabilityMenu = `I can help with container status, counts, logs, restarts, port conflicts,
exit codes and troubleshooting. Try asking:

  - "show status"
  - "how many containers are running?"
  - "restart stopped containers"
  - "show stopped containers"
  - "check logs for <container>"
  - "check port 8080"
  - "exit code 137"
  - "troubleshoot <container>"
  - "create a container from nginx named web on port 8080"
  - "show images"`

const lifecycleUsageHint = `To manage a single container, name it explicitly, for example:
  "start container web", "stop container db" or "remove container old-api".
To act on everything at once, say "restart stopped containers".`

const pullImageHint = `I don't pull images directly. Pull one on the host with:
  docker pull <image>[:tag]
then ask me to create a container from it, e.g. "create a container from nginx on port 8080".`

const networkIssueHint = `For network issues, start with:
  docker network ls
  docker network inspect <network>
  docker exec -it <container> ping 8.8.8.8
If name resolution fails inside containers, ask me about "dns resolution issues".`

// troubleshootRecommendations is the fixed advisory footer of a container
// troubleshooting report. Commands are suggestions only, never executed.
func troubleshootRecommendations(name string) []string {
	return []string{
		"Run `docker inspect " + name + "` to check environment, volumes, and entrypoint.",
		"Verify that dependent services (e.g. DB, API) are reachable.",
		"Check ports with `sudo lsof -i :<port>` if port conflicts are suspected.",
		"Ensure proper file permissions and volume mounts.",
		"If the issue persists, try `docker rm -f " + name + "` and redeploy a fresh instance.",
	}
}
