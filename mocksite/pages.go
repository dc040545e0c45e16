package mocksite

import "html/template"

type loginData struct {
	Error string
}

type landingData struct {
	User string
}

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<form method="POST" action="landing">
  <div id="loginAdvDivId">
    <div class="fields">
      <input type="text" name="userName" placeholder="User name">
      <input type="password" name="passWord" placeholder="Password">
    </div>
    <div class="actions">
      <div><button type="submit">Sign in</button></div>
    </div>
    {{if .Error}}<p id="login-error">{{.Error}}</p>{{end}}
  </div>
</form>
</body>
</html>
`))

var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html>
<head><title>Home</title></head>
<body>
<div id="sidebar">
  <div>
    <div>
      <a href="landing">Home</a>
      <a href="dropdown">Settings</a>
      <a href="login">Sign out</a>
    </div>
  </div>
</div>
<main>
  <h1 id="welcome">Welcome{{if .User}}, {{.User}}{{end}}</h1>
  <ul>
    <li><a href="popup">Popup</a></li>
    <li><a href="alert">Alerts</a></li>
    <li><a href="dropdown">Dropdown</a></li>
    <li><a href="frame">Frame</a></li>
    <li><a href="loader">Loader</a></li>
    <li><a href="gestures">Gestures</a></li>
  </ul>
</main>
</body>
</html>
`))

const popupPage = `<!DOCTYPE html>
<html>
<head><title>Popup</title></head>
<body>
<button id="open-popup" onclick="window.open('popup-window', '_blank', 'width=600,height=400')">Open window</button>
</body>
</html>
`

const popupWindowPage = `<!DOCTYPE html>
<html>
<head><title>Popup window</title></head>
<body>
<h1 id="popup-title">New window</h1>
</body>
</html>
`

const alertPage = `<!DOCTYPE html>
<html>
<head><title>Alerts</title></head>
<body>
<button id="show-alert" onclick="alert('Hello from the mock site')">Alert</button>
<button id="show-confirm" onclick="document.getElementById('confirm-result').textContent = confirm('Continue?') ? 'accepted' : 'dismissed'">Confirm</button>
<p id="confirm-result"></p>
</body>
</html>
`

const dropdownPage = `<!DOCTYPE html>
<html>
<head><title>Dropdown</title></head>
<body>
<select id="fruit" onchange="document.getElementById('selected').textContent = this.value">
  <option value="">Choose one</option>
  <option value="apple">Apple</option>
  <option value="banana">Banana</option>
  <option value="cherry"> Cherry </option>
</select>
<p id="selected"></p>
</body>
</html>
`

const framePage = `<!DOCTYPE html>
<html>
<head><title>Frame</title></head>
<body>
<h1 id="outside-frame">Outside the frame</h1>
<iframe id="content-frame" src="frame-content" width="600" height="200"></iframe>
</body>
</html>
`

const frameContentPage = `<!DOCTYPE html>
<html>
<body>
<p id="in-frame">Inside the frame</p>
</body>
</html>
`

// The loader shows for a moment after the page loads, then the content replaces it.
const loaderPage = `<!DOCTYPE html>
<html>
<head><title>Loader</title>
<style>#content { display: none; }</style>
</head>
<body>
<div class="loader" id="loader">Loading...</div>
<div id="content">Loaded content</div>
<script>
setTimeout(function () {
  document.getElementById('loader').style.display = 'none';
  document.getElementById('content').style.display = 'block';
}, 500);
</script>
</body>
</html>
`

const gesturesPage = `<!DOCTYPE html>
<html>
<head><title>Gestures</title>
<style>
#menu .submenu { display: none; }
#menu:hover .submenu { display: block; }
.target { width: 200px; height: 60px; margin: 10px; border: 1px solid #888; }
</style>
</head>
<body>
<div id="menu">
  <span id="menu-title">Menu</span>
  <div class="submenu"><a id="submenu-item" href="#" onclick="report('submenu')">Item</a></div>
</div>
<div id="context-target" class="target" oncontextmenu="report('context'); return false;">Right click me</div>
<div id="hold-target" class="target" onmousedown="report('down')" onmouseup="report('up')">Hold me</div>
<p id="gesture-result"></p>
<script>
function report(what) { document.getElementById('gesture-result').textContent = what; }
</script>
</body>
</html>
`
