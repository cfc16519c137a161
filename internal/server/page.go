package server

import (
	"strconv"
	"strings"
	"time"
)

// renderPage fills the poll interval into the dashboard.
func renderPage(poll time.Duration) []byte {
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return []byte(strings.ReplaceAll(dashboardHTML, "{{POLL_MS}}", strconv.FormatInt(poll.Milliseconds(), 10)))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Smart Plant Monitor</title>
    <style>
        :root {
            --primary: #4caf50;
            --warning: #ff9800;
            --danger: #f44336;
            --card: #ffffff;
            --bg: #f1f8e9;
            --text: #263238;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body { font-family: "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--text); }
        .container { max-width: 1100px; margin: 0 auto; padding: 20px; }
        header { text-align: center; margin-bottom: 24px; }
        header h1 { color: var(--primary); font-size: 2rem; }
        .dashboard { display: grid; grid-template-columns: 2fr 1fr; gap: 20px; }
        @media (max-width: 800px) { .dashboard { grid-template-columns: 1fr; } }
        .card { background: var(--card); border-radius: 10px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); margin-bottom: 20px; overflow: hidden; }
        .card-header { background: var(--primary); color: #fff; padding: 12px 16px; font-weight: 600; }
        .card-body { padding: 16px; }
        .stream-container img { width: 100%; border-radius: 6px; background: #000; }
        .stat-item { display: flex; align-items: center; gap: 12px; padding: 10px 0; border-bottom: 1px solid #eceff1; }
        .stat-item:last-child { border-bottom: none; }
        .stat-icon { font-size: 1.6rem; }
        .stat-info { flex: 1; }
        .stat-value { font-size: 1.3rem; font-weight: 700; }
        .health-bar { height: 10px; background: #eceff1; border-radius: 5px; margin-top: 6px; overflow: hidden; }
        .health-fill { height: 100%; width: 0; transition: width 0.5s; }
        .health-fill.good { background: var(--primary); }
        .health-fill.warning { background: var(--warning); }
        .health-fill.danger { background: var(--danger); }
        footer { text-align: center; font-size: 0.85rem; color: #78909c; margin-top: 10px; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Smart Plant Monitor</h1>
            <p>Real-time plant health monitoring</p>
        </header>

        <div class="dashboard">
            <div class="card">
                <div class="card-header">Live Stream</div>
                <div class="card-body">
                    <div class="stream-container">
                        <img id="stream" src="/stream" alt="Plant Stream">
                    </div>
                </div>
            </div>

            <div>
                <div class="card">
                    <div class="card-header">Plant Status</div>
                    <div class="card-body">
                        <div class="stat-item">
                            <div class="stat-icon">🌿</div>
                            <div class="stat-info">
                                <div>Plant Detection</div>
                                <div id="plant-status" class="stat-value">Checking...</div>
                            </div>
                        </div>
                        <div class="stat-item">
                            <div class="stat-icon">💧</div>
                            <div class="stat-info">
                                <div>Plant Health</div>
                                <div id="health-value" class="stat-value">0%</div>
                                <div class="health-bar"><div id="health-bar" class="health-fill"></div></div>
                            </div>
                        </div>
                        <div class="stat-item">
                            <div class="stat-icon">🍓</div>
                            <div class="stat-info">
                                <div>Fruit Detection</div>
                                <div id="fruit-status" class="stat-value">Checking...</div>
                            </div>
                        </div>
                    </div>
                </div>

                <div class="card">
                    <div class="card-header">System Info</div>
                    <div class="card-body">
                        <div class="stat-item">
                            <div class="stat-icon">⚡</div>
                            <div class="stat-info">
                                <div>FPS</div>
                                <div id="fps-value" class="stat-value">0</div>
                            </div>
                        </div>
                    </div>
                </div>
            </div>
        </div>

        <footer><p>Plant Monitor</p></footer>
    </div>

    <script>
        const POLL_MS = {{POLL_MS}};

        function healthClass(v) {
            if (v >= 70) return 'health-fill good';
            if (v >= 40) return 'health-fill warning';
            return 'health-fill danger';
        }

        function updatePlantData() {
            fetch('/data')
                .then(r => r.json())
                .then(data => {
                    document.getElementById('plant-status').textContent =
                        data.plant_detected ? 'Detected' : 'Not Detected';

                    const health = Math.round(data.health_ratio);
                    document.getElementById('health-value').textContent = health + '%';
                    const bar = document.getElementById('health-bar');
                    bar.style.width = health + '%';
                    bar.className = healthClass(health);

                    document.getElementById('fruit-status').textContent =
                        data.fruit_detected ? 'Detected' : 'Not Detected';
                    document.getElementById('fps-value').textContent = data.fps.toFixed(1);
                })
                .catch(err => console.error('Error fetching data:', err));
        }

        setInterval(updatePlantData, POLL_MS);
        updatePlantData();
    </script>
</body>
</html>
`
