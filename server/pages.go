package server

// formPage is shown until the first generated index.html exists.
const formPage = `<!DOCTYPE html>
<html>
<head><title>appwright</title></head>
<body>
<h1>App Builder</h1>
<form method="post">
    <label for="user_input">Describe the app you want to create:</label><br>
    <textarea id="user_input" name="user_input" style="width:100%; height:150px; padding:10px; border:1px solid #ccc; border-radius:4px; font-size:16px; resize:vertical;"></textarea><br><br>
    <input type="submit" value="Submit">
</form>
</body>
</html>`

// progressPage polls /progress every 2 seconds until the build completes.
const progressPage = `<!DOCTYPE html>
<html>
<head><title>appwright - building</title></head>
<body>
<h1>Progress</h1>
<pre id="progress"></pre>
<button id="refresh-btn" style="display:none;" onclick="location.reload();">Refresh Page</button>
<script>
    setInterval(function() {
        fetch('/progress')
        .then(response => response.json())
        .then(data => {
            document.getElementById('progress').innerHTML = data.output;
            if (data.completed) {
                document.getElementById('refresh-btn').style.display = 'block';
            }
        });
    }, 2000);
</script>
</body>
</html>`
